package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/id"
)

func TestNewNode(t *testing.T) {
	n := NewNode("  AGR01 ", " Bebidas ", nil)

	assert.False(t, id.IsNil(n.ID))
	assert.True(t, n.Ativa)
	assert.Equal(t, "AGR01", n.Codigo)
	assert.Equal(t, "Bebidas", n.Nome)
	assert.False(t, n.DataCriacao.IsZero())
	assert.Nil(t, n.DataUltimaAlteracao)
}

func TestNode_Validate(t *testing.T) {
	n := Node{}
	err := n.Validate(context.Background())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields(), "codigo")
	assert.Contains(t, appErr.Fields(), "nome")
}

func TestBaseEntity_TouchKeepsAtiva(t *testing.T) {
	b := NewBaseEntity()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.Touch(at)

	assert.True(t, b.Ativa)
	require.NotNil(t, b.DataUltimaAlteracao)
	assert.Equal(t, at, *b.DataUltimaAlteracao)

	b.Deactivate(at)
	assert.False(t, b.IsAtiva())
}

func TestEndereco_Validate(t *testing.T) {
	e := Endereco{
		Logradouro: "Rua A",
		Numero:     "10",
		Cep:        "01310-100",
		Bairro:     "Centro",
		Cidade:     "São Paulo",
		Uf:         "sp",
	}
	e.Normalize()

	var fe apperror.FieldErrors
	e.ValidateInto(&fe)
	assert.True(t, fe.Empty())
	assert.Equal(t, "01310100", e.Cep)
	assert.Equal(t, "SP", e.Uf)

	missing := Endereco{Logradouro: "Rua A"}
	var fe2 apperror.FieldErrors
	missing.ValidateInto(&fe2)
	assert.Contains(t, fe2, "endereco.cep")
	assert.Contains(t, fe2, "endereco.bairro")
	assert.Contains(t, fe2, "endereco.cidade")
	assert.Contains(t, fe2, "endereco.uf")
}

func TestCnpjAndEmail(t *testing.T) {
	assert.Equal(t, "11111111000111", NormalizeCnpj("11.111.111/0001-11"))
	assert.True(t, ValidCnpj(NormalizeCnpj("11.111.111/0001-11")))
	assert.False(t, ValidCnpj("123"))

	assert.True(t, IsEmail("contato@restaurante.com.br"))
	assert.False(t, IsEmail("contato"))
}
