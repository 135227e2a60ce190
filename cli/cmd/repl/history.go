package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const baseHistory = "history"

// maxHistory bounds the number of entries kept on disk.
const maxHistory = 1000

// HistoryEntry is a single line of history and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// prefix returns the mode tag written ahead of the line in the history file.
func (e HistoryEntry) prefix() string {
	if e.Mode == modeCtrl {
		return "C:"
	}

	return "E:"
}

// History is the persistent REPL input history.
// An empty path keeps history in memory only.
type History struct {
	fs      afero.Fs
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns a History stored at path on fs.
func NewHistory(fs afero.Fs, path string) *History {
	return &History{fs: fs, path: path}
}

// Load replaces the entries with those read from the history file.
// A missing file is not an error.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := h.fs.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry := HistoryEntry{Line: line, Mode: modeEval}

		if s, ok := strings.CutPrefix(line, "E:"); ok {
			entry.Line = s
		} else if s, ok := strings.CutPrefix(line, "C:"); ok {
			entry.Line, entry.Mode = s, modeCtrl
		}

		h.entries = append(h.entries, entry)
	}

	return scanner.Err()
}

// Add appends line entered in mode. An earlier identical entry is moved to
// the end instead of being repeated.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{Line: line, Mode: mode}

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if over := len(h.entries) - maxHistory; over > 0 {
		h.entries = slices.Delete(h.entries, 0, over)
		i = 0
	}

	if h.path == "" {
		return nil
	}

	if i >= 0 {
		return h.rewrite()
	}

	return h.append(entry)
}

// Entry returns the entry at index i; index 0 is the oldest.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// append writes a single entry to the end of the history file.
// Must be called with h.mu held.
func (h *History) append(entry HistoryEntry) error {
	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return err
	}

	file, err := h.fs.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.prefix() + entry.Line + "\n")

	return err
}

// rewrite replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) rewrite() error {
	var sb strings.Builder

	for _, entry := range h.entries {
		sb.WriteString(entry.prefix())
		sb.WriteString(entry.Line)
		sb.WriteByte('\n')
	}

	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return err
	}

	return afero.WriteFile(h.fs, h.path, []byte(sb.String()), 0o600)
}
