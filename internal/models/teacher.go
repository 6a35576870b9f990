package models

// Teacher represents a /professor/ record
type Teacher struct {
	ID               int64   `json:"id,omitempty"`
	Name             string  `json:"nome" validate:"filled,trimmin=3"`
	CPF              string  `json:"cpf" validate:"required,cpf=required"`
	RG               string  `json:"rg" validate:"rg"`
	IssuingAuthority string  `json:"orgao_expedidor"`
	BirthDate        string  `json:"data_nascimento"`
	Address          string  `json:"endereco"`
	Phone            string  `json:"telefone_contato" validate:"filled,phone"`
	Email            string  `json:"email" validate:"filled,looseemail"`
	AdmissionDate    string  `json:"data_admissao" validate:"filled"`
	Birthplace       string  `json:"naturalidade"`
	Photo            *string `json:"foto,omitempty"`
	SubjectIDs       []int64 `json:"disciplinas"`
}

// HasSubject reports whether the teacher references the subject id
func (t Teacher) HasSubject(id int64) bool {
	for _, s := range t.SubjectIDs {
		if s == id {
			return true
		}
	}
	return false
}
