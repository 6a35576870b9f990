package form

import (
	"testing"

	"github.com/smartsecretaria/secretaria/internal/models"
)

func TestDiffReturnsChangedSendableFields(t *testing.T) {
	photo := "http://x/a.jpg"
	before := models.Student{ID: 1, FullName: "Ana", Phone: "11987654321", ClassID: 2}
	after := before
	after.Phone = "11911112222"
	after.ClassID = 5
	after.Photo = &photo

	changed, err := Diff(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed fields, got %v", changed)
	}
	if string(changed["telefone_contato"]) != `"11911112222"` {
		t.Fatalf("expected phone change, got %s", changed["telefone_contato"])
	}
	if string(changed["turma"]) != "5" {
		t.Fatalf("expected class change, got %s", changed["turma"])
	}
	if _, ok := changed["foto"]; ok {
		t.Fatalf("expected foto to be skipped")
	}
}

func TestDiffUnchanged(t *testing.T) {
	c := models.Class{ID: 3, Grade: 1, Section: "A", Year: 2025}
	changed, err := Diff(c, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("expected no changes, got %v", changed)
	}
}

func TestDiffSliceField(t *testing.T) {
	before := models.Teacher{SubjectIDs: []int64{1}}
	after := models.Teacher{SubjectIDs: []int64{1, 2}}
	changed, err := Diff(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(changed["disciplinas"]) != "[1,2]" {
		t.Fatalf("expected subjects change, got %s", changed["disciplinas"])
	}
}
