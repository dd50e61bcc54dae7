// Package resume persists which directories a scan has opened and finished
// so an interrupted scan can pick up where it stopped.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Directory is one opened directory.
type Directory struct {
	URL         string `json:"url"`
	ParentDepth int    `json:"parent_depth"`
	Done        bool   `json:"done"`
}

// State tracks the progress of a scan so it can be resumed after interruption.
type State struct {
	Targets     []string    `json:"targets"`
	Directories []Directory `json:"directories"`

	mu    sync.Mutex
	path  string
	index map[string]int
}

// New creates a new empty resume state that will be saved to the given path.
func New(path string, targets []string) *State {
	return &State{
		Targets: targets,
		path:    path,
		index:   make(map[string]int),
	}
}

// Load reads an existing resume state from disk. Returns nil if the file
// does not exist.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing resume file: %w", err)
	}

	s.path = path
	s.index = make(map[string]int, len(s.Directories))
	for i, d := range s.Directories {
		s.index[d.URL] = i
	}
	return &s, nil
}

// Opened records that dir got a wordlist pass. Known directories are left
// unchanged.
func (s *State) Opened(dir string, parentDepth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[dir]; ok {
		return
	}
	s.index[dir] = len(s.Directories)
	s.Directories = append(s.Directories, Directory{URL: dir, ParentDepth: parentDepth})
}

// Finished marks every task of dir as completed.
func (s *State) Finished(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[dir]; ok {
		s.Directories[i].Done = true
	}
}

// IsFinished reports whether dir was fully scanned.
func (s *State) IsFinished(dir string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[dir]
	return ok && s.Directories[i].Done
}

// Pending returns the opened directories that were not finished, in the
// order they were opened.
func (s *State) Pending() []Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Directory
	for _, d := range s.Directories {
		if !d.Done {
			out = append(out, d)
		}
	}
	return out
}

// Save writes the current state to disk, replacing the file atomically.
func (s *State) Save() error {
	s.mu.Lock()
	data, err := json.Marshal(s)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("serializing resume state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("creating resume directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing resume file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Path returns the file the state is saved to.
func (s *State) Path() string {
	return s.path
}

// Remove deletes the resume file (called on successful completion).
func (s *State) Remove() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
