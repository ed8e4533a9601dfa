package entity

import (
	"strings"
	"unicode"

	"retaguarda/internal/core/apperror"
)

// Endereco is the postal address value object of Empresa and Filial.
// Stored as flat columns of the owning table.
type Endereco struct {
	Logradouro  string  `db:"logradouro" json:"logradouro" validate:"required,max=150"`
	Numero      string  `db:"numero" json:"numero" validate:"max=10"`
	Complemento *string `db:"complemento" json:"complemento,omitempty" validate:"omitempty,max=100"`
	Cep         string  `db:"cep" json:"cep" validate:"required,len=8,numeric"`
	Bairro      string  `db:"bairro" json:"bairro" validate:"required,max=100"`
	Cidade      string  `db:"cidade" json:"cidade" validate:"required,max=100"`
	Uf          string  `db:"uf" json:"uf" validate:"required,len=2,alpha"`
}

// Normalize trims the fields, keeps only digits in Cep and upper-cases Uf.
func (e *Endereco) Normalize() {
	e.Logradouro = strings.TrimSpace(e.Logradouro)
	e.Numero = strings.TrimSpace(e.Numero)
	e.Cep = OnlyDigits(e.Cep)
	e.Bairro = strings.TrimSpace(e.Bairro)
	e.Cidade = strings.TrimSpace(e.Cidade)
	e.Uf = strings.ToUpper(strings.TrimSpace(e.Uf))
}

// IsZero reports whether no field was filled.
func (e Endereco) IsZero() bool {
	return e.Logradouro == "" && e.Numero == "" && e.Complemento == nil &&
		e.Cep == "" && e.Bairro == "" && e.Cidade == "" && e.Uf == ""
}

// ValidateInto records address errors under the "endereco" prefix.
func (e *Endereco) ValidateInto(fe *apperror.FieldErrors) {
	ValidateStruct("endereco", e, fe)
}

// OnlyDigits strips every non-digit rune.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCnpj returns the 14-digit form of a CNPJ ("11.111.111/0001-11" → "11111111000111").
func NormalizeCnpj(s string) string {
	return OnlyDigits(s)
}

// ValidCnpj reports whether a normalized CNPJ has the expected length.
func ValidCnpj(normalized string) bool {
	return len(normalized) == 14
}
