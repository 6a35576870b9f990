package models

// Student represents an /aluno/ record. Documents are kept as digits only.
type Student struct {
	ID               int64   `json:"id,omitempty"`
	FullName         string  `json:"nome_completo" validate:"filled,trimmin=3"`
	BirthDate        string  `json:"data_nascimento" validate:"filled"`
	FatherName       string  `json:"nome_pai"`
	MotherName       string  `json:"nome_mae"`
	GuardianName     string  `json:"nome_responsavel"`
	CPF              string  `json:"cpf" validate:"cpf"`
	RG               string  `json:"rg" validate:"rg"`
	IssuingAuthority string  `json:"orgao_expedidor"`
	Address          string  `json:"endereco" validate:"filled"`
	Phone            string  `json:"telefone_contato" validate:"filled,phone"`
	Email            string  `json:"email" validate:"omitempty,looseemail"`
	ClassID          int64   `json:"turma" validate:"required"`
	Photo            *string `json:"foto,omitempty"`
}
