// Package main is the production entry point for GoSpectra.
//
// GoSpectra is a real-time spectrum analyzer:
// - the run command opens the analyzer window on a tone generator or a WAV file
// - render writes the colour spectrum of a whole WAV file as a PNG
// - snapshot writes the final line graph of a WAV file as an HTML chart
//
// Build:
//
//	go build -o build/gospectra ./cmd
//
// Run:
//
//	./build/gospectra run --file tone.wav
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform/backends"
	"github.com/tejashwikalptaru/gospectra/internal/app"
	"github.com/tejashwikalptaru/gospectra/internal/logger"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	backendUsage := "transform backend (" + strings.Join(backends.Names(), ", ") + ")"
	logFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "DEBUG, INFO, WARN or ERROR",
				EnvVars: []string{"GOSPECTRA_LOG_LEVEL"},
				Value:   "INFO",
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   backendUsage,
				Value:   backends.Default,
			},
		}
	}

	return &cli.App{
		Name:                 "gospectra",
		Usage:                "Real-time spectrum analyzer",
		Version:              app.GetVersionInfo().Release(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "Open the analyzer window",
				Action:  runWindow,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "WAV file to play instead of the tone generator",
					},
					&cli.IntFlag{
						Name:  "fps",
						Usage: "analyzer updates per second",
						Value: 60,
					},
				}, logFlags()...),
			},
			{
				Name:   "render",
				Usage:  "Render the colour spectrum of a WAV file to a PNG",
				Action: renderSpectrogram,
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "WAV file to analyse", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "PNG to write", Required: true},
					&cli.IntFlag{Name: "width", Usage: "image width in pixels", Value: 1600},
					&cli.IntFlag{Name: "height", Usage: "image height in pixels", Value: 600},
				}, logFlags()...),
			},
			{
				Name:   "snapshot",
				Usage:  "Export the line graph of a WAV file as an HTML chart",
				Action: exportSnapshot,
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "WAV file to analyse", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "HTML file to write", Required: true},
					&cli.Float64Flag{Name: "cursor", Usage: "peak search position as a fraction of the axis, negative for none", Value: -1},
					&cli.IntFlag{Name: "width", Usage: "number of graph points", Value: 1024},
				}, logFlags()...),
			},
		},
	}
}

func newLogger(cCtx *cli.Context) (*slog.Logger, error) {
	cfg := logger.DefaultConfig()
	level, ok := logger.ParseLevel(cCtx.String("log-level"))
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", cCtx.String("log-level"))
	}
	cfg.Level = level
	return logger.NewLogger(cfg), nil
}

func runWindow(cCtx *cli.Context) error {
	config := app.DefaultConfig()
	config.File = cCtx.String("file")
	config.FPS = cCtx.Int("fps")
	config.Backend = cCtx.String("backend")
	if level, ok := logger.ParseLevel(cCtx.String("log-level")); ok {
		config.LogLevel = level
	}

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	return application.Run()
}

func renderSpectrogram(cCtx *cli.Context) error {
	log, err := newLogger(cCtx)
	if err != nil {
		return err
	}
	exports := app.NewExportService(log, nil, cCtx.String("backend"))
	return writeFile(cCtx.String("out"), func(f *os.File) error {
		return exports.RenderSpectrogram(contextOrBackground(cCtx.Context), cCtx.String("file"), cCtx.Int("width"), cCtx.Int("height"), f)
	})
}

func exportSnapshot(cCtx *cli.Context) error {
	log, err := newLogger(cCtx)
	if err != nil {
		return err
	}
	exports := app.NewExportService(log, nil, cCtx.String("backend"))
	return writeFile(cCtx.String("out"), func(f *os.File) error {
		return exports.Snapshot(contextOrBackground(cCtx.Context), cCtx.String("file"), cCtx.Float64("cursor"), cCtx.Int("width"), f)
	})
}

// writeFile creates path, runs write and removes the file again when write fails.
func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// contextOrBackground keeps actions usable when run without a parent context.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
