package models

// Subject represents a /disciplina/ record
type Subject struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"nome"`
}
