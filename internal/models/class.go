package models

import (
	"fmt"
	"strings"
)

// Period codes of a class
const (
	PeriodMorning   = "M"
	PeriodAfternoon = "V"
	PeriodEvening   = "N"
	PeriodFullTime  = "I"
)

// Periods lists the accepted period codes with their display labels
var Periods = []StringOption{
	{Value: PeriodMorning, Label: "Matutino"},
	{Value: PeriodAfternoon, Label: "Vespertino"},
	{Value: PeriodEvening, Label: "Noturno"},
	{Value: PeriodFullTime, Label: "Integral"},
}

// PeriodLabel returns the display label of a period code, or the code itself
func PeriodLabel(code string) string {
	for _, p := range Periods {
		if p.Value == code {
			return p.Label
		}
	}
	return code
}

// IsPeriod reports whether code is a known period code
func IsPeriod(code string) bool {
	for _, p := range Periods {
		if p.Value == code {
			return true
		}
	}
	return false
}

// Class represents a /turma/ record
type Class struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"nome"`
	Grade     int    `json:"serie" validate:"required"`
	Level     string `json:"nivel"`
	Section   string `json:"turma_letra" validate:"filled"`
	Year      int    `json:"ano" validate:"required,min=2000,max=2100"`
	Period    string `json:"periodo" validate:"filled,period"`
	TeacherID int64  `json:"professor_responsavel" validate:"required"`
}

// IntOption is a select option with a numeric value
type IntOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// StringOption is a select option with a string value
type StringOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ClassChoices holds the enumerated options served by /turma/choices/
type ClassChoices struct {
	Grades   []IntOption    `json:"serie"`
	Levels   []StringOption `json:"nivel"`
	Sections []StringOption `json:"turma_letra"`
	Periods  []StringOption `json:"periodo"`
}

// GradeLabel returns the label of the grade option, or "" when unknown
func (c ClassChoices) GradeLabel(grade int) string {
	for _, g := range c.Grades {
		if g.Value == grade {
			return g.Label
		}
	}
	return ""
}

// PeriodLabel returns the label of the period option, falling back to the known codes
func (c ClassChoices) PeriodLabel(code string) string {
	for _, p := range c.Periods {
		if p.Value == code {
			return p.Label
		}
	}
	return PeriodLabel(code)
}

// Education level codes
const (
	LevelEarlyChildhood = "EI"
	LevelElementary     = "EF"
	LevelHighSchool     = "EM"
)

// DefaultClassChoices is the option set served by the development API
func DefaultClassChoices() ClassChoices {
	grades := make([]IntOption, 0, 12)
	for g := 1; g <= 9; g++ {
		stage := "Ensino Fundamental I"
		if g > 5 {
			stage = "Ensino Fundamental II"
		}
		grades = append(grades, IntOption{Value: g, Label: fmt.Sprintf("%dº Ano - %s", g, stage)})
	}
	for g := 1; g <= 3; g++ {
		grades = append(grades, IntOption{Value: 9 + g, Label: fmt.Sprintf("%dª Série - Ensino Médio", g)})
	}

	sections := make([]StringOption, 0, 6)
	for _, l := range "ABCDEF" {
		sections = append(sections, StringOption{Value: string(l), Label: string(l)})
	}

	periods := make([]StringOption, len(Periods))
	copy(periods, Periods)

	return ClassChoices{
		Grades: grades,
		Levels: []StringOption{
			{Value: LevelEarlyChildhood, Label: "Educação Infantil"},
			{Value: LevelElementary, Label: "Ensino Fundamental"},
			{Value: LevelHighSchool, Label: "Ensino Médio"},
		},
		Sections: sections,
		Periods:  periods,
	}
}

// ClassName builds the display name "<grade> <section> - <period>", where grade is
// the part of the grade label before " - ". It is empty while any part is unknown.
func (c ClassChoices) ClassName(grade int, section, period string) string {
	gradeLabel := c.GradeLabel(grade)
	periodLabel := c.PeriodLabel(period)
	if gradeLabel == "" || section == "" || period == "" {
		return ""
	}
	short, _, _ := strings.Cut(gradeLabel, " - ")
	return fmt.Sprintf("%s %s - %s", short, section, periodLabel)
}
