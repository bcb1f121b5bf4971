package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `A real-time spectrum analyzer built with Go and Fyne.

**Features:**
- Line graph with a held peak graph, or a scrolling colour spectrum
- Peak tracking with frequency, level and note under the pointer
- Stereo, mid/side, phase and complex channel analysis
- Analyse WAV files or a built-in tone generator
- Export spectrograms as PNG and line graphs as HTML charts

Move the pointer over the graph to track a peak. Click or press Space to freeze the display.
`
