// Package export writes record lists as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
)

// Sheet names
const (
	StudentsSheet = "Alunos"
	TeachersSheet = "Professores"
	ClassesSheet  = "Turmas"
)

var (
	studentHeader = []string{"ID", "Nome completo", "Data de nascimento", "CPF", "RG", "Telefone", "Email", "Responsável", "Turma"}
	teacherHeader = []string{"ID", "Nome", "CPF", "Telefone", "Email", "Data de admissão", "Disciplinas"}
	classHeader   = []string{"ID", "Nome", "Série", "Turma", "Ano", "Período", "Professor responsável"}
)

// Students writes one row per student; classNames resolves the turma id
func Students(w io.Writer, students []models.Student, classNames map[int64]string) error {
	rows := make([][]interface{}, 0, len(students))
	for _, s := range students {
		rows = append(rows, []interface{}{
			s.ID,
			s.FullName,
			mask.DateToBR(s.BirthDate),
			mask.MaskCPF(s.CPF),
			mask.MaskRG(s.RG),
			mask.MaskPhone(s.Phone),
			s.Email,
			s.GuardianName,
			lookup(classNames, s.ClassID),
		})
	}
	return write(w, StudentsSheet, studentHeader, rows)
}

// Teachers writes one row per teacher; subjectNames resolves the disciplinas ids
func Teachers(w io.Writer, teachers []models.Teacher, subjectNames map[int64]string) error {
	rows := make([][]interface{}, 0, len(teachers))
	for _, t := range teachers {
		subjects := make([]string, 0, len(t.SubjectIDs))
		for _, id := range t.SubjectIDs {
			subjects = append(subjects, lookup(subjectNames, id))
		}
		rows = append(rows, []interface{}{
			t.ID,
			t.Name,
			mask.MaskCPF(t.CPF),
			mask.MaskPhone(t.Phone),
			t.Email,
			mask.DateToBR(t.AdmissionDate),
			strings.Join(subjects, ", "),
		})
	}
	return write(w, TeachersSheet, teacherHeader, rows)
}

// Classes writes one row per class; teacherNames resolves the responsible teacher id
func Classes(w io.Writer, classes []models.Class, teacherNames map[int64]string) error {
	rows := make([][]interface{}, 0, len(classes))
	for _, c := range classes {
		rows = append(rows, []interface{}{
			c.ID,
			c.Name,
			c.Grade,
			c.Section,
			c.Year,
			models.PeriodLabel(c.Period),
			lookup(teacherNames, c.TeacherID),
		})
	}
	return write(w, ClassesSheet, classHeader, rows)
}

func lookup(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("#%d", id)
}

func write(w io.Writer, sheet string, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
