package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), KindSystem},
		{"not found", NewNotFound("filial", "x"), KindNotFound},
		{"validation", NewValidation("bad"), KindValidation},
		{"duplicate", NewDuplicate("agrupamento", "código", "AGR01"), KindConflict},
		{"wrapped conflict", fmt.Errorf("create: %w", NewConflict("x")), KindConflict},
		{"internal", NewInternal(errors.New("db down")), KindSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNewDependencyBlocked(t *testing.T) {
	err := NewDependencyBlocked("categoria", "id-1", []Blocker{
		{Kind: "categoria", Count: 3, Message: "3 categoria(s) filha(s) ativa(s)"},
		{Kind: "produto", Count: 1, Message: "1 produto(s) ativo(s)"},
	})

	assert.True(t, IsConflict(err))
	assert.True(t, IsDependencyBlocked(err))
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.Contains(t, err.Message, "3 categoria(s) filha(s) ativa(s)")
	assert.Contains(t, err.Message, "1 produto(s) ativo(s)")

	blockers, ok := err.Details["blockers"].([]Blocker)
	require.True(t, ok)
	assert.Len(t, blockers, 2)
}

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors
	assert.NoError(t, fe.Err())

	fe.Add("nome", "nome é obrigatório")
	fe.Add("nome", "ignored")
	fe.Add("codigo", "código é obrigatório")

	err := fe.Err()
	require.Error(t, err)
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, "código é obrigatório; nome é obrigatório", appErr.Message)
	assert.Equal(t, "nome é obrigatório", appErr.Fields()["nome"])
}

func TestFieldErrors_Merge(t *testing.T) {
	var fe FieldErrors

	assert.NoError(t, fe.Merge(NewFieldValidation("endereco.cep", "cep é obrigatório")))
	assert.Equal(t, "cep é obrigatório", fe["endereco.cep"])

	other := errors.New("io")
	assert.Same(t, other, fe.Merge(other))
}
