// Package navigation tracks the current screen and the state carried between screens.
package navigation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
)

// Screen paths
const (
	LoginPath      = "/login"
	DashboardPath  = "/dashboard"
	StudentsPath   = "/alunos"
	NewStudentPath = "/alunos/novo"
	TeachersPath   = "/professores"
	NewTeacherPath = "/professores/novo"
	ClassesPath    = "/turmas"
	NewClassPath   = "/turmas/nova"
)

// ContextNewStudent marks a class form launched from the student form
const ContextNewStudent = "aluno"

// StudentPath returns the edit path of a student
func StudentPath(id int64) string {
	return StudentsPath + "/" + strconv.FormatInt(id, 10)
}

// TeacherPath returns the edit path of a teacher
func TeacherPath(id int64) string {
	return TeachersPath + "/" + strconv.FormatInt(id, 10)
}

// ClassPath returns the edit path of a class
func ClassPath(id int64) string {
	return ClassesPath + "/" + strconv.FormatInt(id, 10)
}

// State is carried along a navigation, like browser history state
type State struct {
	ReturnTo   string          `json:"returnTo,omitempty"`
	FormData   json.RawMessage `json:"formData,omitempty"`
	Context    string          `json:"context,omitempty"`
	NewClassID int64           `json:"novaTurmaId,omitempty"`
}

// Location is a path plus its optional state
type Location struct {
	Path  string
	State *State
}

// Navigator moves between screens
type Navigator interface {
	Navigate(path string)
	NavigateWithState(path string, state State)
	Current() Location
}

// History is an in-memory Navigator keeping every visited location
type History struct {
	mu      sync.RWMutex
	entries []Location
}

// NewHistory creates a History starting at path
func NewHistory(path string) *History {
	return &History{entries: []Location{{Path: path}}}
}

// Navigate implements Navigator
func (h *History) Navigate(path string) {
	h.push(Location{Path: path})
}

// NavigateWithState implements Navigator
func (h *History) NavigateWithState(path string, state State) {
	s := state
	if state.FormData != nil {
		s.FormData = append(json.RawMessage(nil), state.FormData...)
	}
	h.push(Location{Path: path, State: &s})
}

// Current implements Navigator
func (h *History) Current() Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return Location{}
	}
	return h.entries[len(h.entries)-1]
}

// Back returns to the previous location; it reports false at the first entry
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

// Paths returns every visited path in order
func (h *History) Paths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Path
	}
	return out
}

func (h *History) push(loc Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, loc)
}

// EncodeFormData serialises in-progress form values for State.FormData
func EncodeFormData(values interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode form data: %w", err)
	}
	return data, nil
}

// DecodeFormData restores form values saved with EncodeFormData
func DecodeFormData(data json.RawMessage, into interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("no form data")
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("decode form data: %w", err)
	}
	return nil
}
