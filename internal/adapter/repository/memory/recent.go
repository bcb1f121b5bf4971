package memory

import (
	"encoding/json"
	"slices"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

const recentFilesKey = "history.recent_files"

// MaxRecentFiles is how many analysed files are remembered.
const MaxRecentFiles = 10

// RecentFilesRepository remembers the most recently analysed files, newest first.
//
// Thread-safe: All operations protected by sync.RWMutex.
type RecentFilesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewRecentFilesRepository creates a new recent files repository.
func NewRecentFilesRepository(prefs fyne.Preferences) *RecentFilesRepository {
	return &RecentFilesRepository{prefs: prefs}
}

// Add moves path to the front of the list, trimming it to MaxRecentFiles.
func (r *RecentFilesRepository) Add(path string) error {
	if path == "" {
		return domain.ErrInvalidFilePath
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	paths, err := r.load()
	if err != nil {
		paths = nil
	}
	paths = slices.DeleteFunc(paths, func(p string) bool { return p == path })
	paths = append([]string{path}, paths...)
	if len(paths) > MaxRecentFiles {
		paths = paths[:MaxRecentFiles]
	}

	data, err := json.Marshal(paths)
	if err != nil {
		return domain.NewRepositoryError("add", "recent_files", "failed to marshal paths", err)
	}
	r.prefs.SetString(recentFilesKey, string(data))
	return nil
}

// List returns the remembered paths, newest first.
func (r *RecentFilesRepository) List() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

func (r *RecentFilesRepository) load() ([]string, error) {
	data := r.prefs.String(recentFilesKey)
	if data == "" {
		return []string{}, nil
	}

	var paths []string
	if err := json.Unmarshal([]byte(data), &paths); err != nil {
		return nil, domain.NewRepositoryError("list", "recent_files", "failed to unmarshal paths", err)
	}
	return paths, nil
}

// Clear forgets all paths.
func (r *RecentFilesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(recentFilesKey)
	return nil
}

var _ ports.RecentFilesRepository = (*RecentFilesRepository)(nil)
