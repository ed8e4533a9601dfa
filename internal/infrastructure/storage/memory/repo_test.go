package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/catalogs/categoria"
)

func strPtr(s string) *string { return &s }

func TestRepo_RowsAreIsolatedCopies(t *testing.T) {
	ctx := t.Context()
	cat := NewCatalog()

	paiID := id.New()
	row := categoria.NewCategoria(id.New(), &paiID, 2, "C2", "Cervejas", strPtr("original"))
	require.NoError(t, cat.Categorias.Create(ctx, row))

	// caller mutations after Create do not reach the store
	*row.Descricao = "changed by caller"
	*row.CategoriaPaiID = id.New()

	got, err := cat.Categorias.GetByID(ctx, row.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Descricao)
	assert.Equal(t, "original", *got.Descricao)
	assert.Equal(t, paiID, *got.CategoriaPaiID)

	// neither do mutations of a returned row
	*got.Descricao = "changed by reader"
	*got.CategoriaPaiID = id.New()

	again, err := cat.Categorias.GetByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", *again.Descricao)
	assert.Equal(t, paiID, *again.CategoriaPaiID)
	assert.NotSame(t, got.Descricao, again.Descricao)
}

func TestDeepCopy_SlicesAndMaps(t *testing.T) {
	type payload struct {
		Tags  []string
		Attrs map[string]*string
		Note  *string
	}

	src := &payload{
		Tags:  []string{"a", "b"},
		Attrs: map[string]*string{"k": strPtr("v")},
		Note:  strPtr("n"),
	}
	cp := clone(src)

	cp.Tags[0] = "x"
	*cp.Attrs["k"] = "changed"
	*cp.Note = "changed"

	assert.Equal(t, []string{"a", "b"}, src.Tags)
	assert.Equal(t, "v", *src.Attrs["k"])
	assert.Equal(t, "n", *src.Note)
}
