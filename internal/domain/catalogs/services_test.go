package catalogs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/audit"
	"retaguarda/internal/domain/catalogs"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/categoria"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/empresa"
	"retaguarda/internal/domain/catalogs/filial"
	"retaguarda/internal/domain/catalogs/produto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
	"retaguarda/internal/domain/filter"
	memcache "retaguarda/internal/infrastructure/cache"
	"retaguarda/internal/infrastructure/storage/memory"
	"retaguarda/pkg/logger"
)

type fixture struct {
	ctx   context.Context
	svc   *catalogs.Services
	cache *memcache.MemoryCache
}

func newFixture(t *testing.T, opts ...func(*catalogs.Options)) *fixture {
	t.Helper()

	cat := memory.NewCatalog()
	mc := memcache.NewMemoryCache()
	o := catalogs.Options{Cache: mc}
	for _, apply := range opts {
		apply(&o)
	}

	return &fixture{
		ctx:   context.Background(),
		svc:   catalogs.NewServices(cat.Repos(), cat.TxManager, o),
		cache: mc,
	}
}

func validEndereco() entity.Endereco {
	return entity.Endereco{
		Logradouro: "Rua das Flores",
		Numero:     "100",
		Cep:        "01001-000",
		Bairro:     "Centro",
		Cidade:     "São Paulo",
		Uf:         "sp",
	}
}

func (f *fixture) empresa(t *testing.T, codigo, cnpj, email string) *empresa.Empresa {
	t.Helper()
	e, err := f.svc.Empresa.Create(f.ctx, empresa.NewEmpresa(codigo, "Empresa "+codigo, cnpj, email, validEndereco()))
	require.NoError(t, err)
	return e
}

func (f *fixture) filial(t *testing.T, empresaID id.ID, codigo string, matriz bool) *filial.Filial {
	t.Helper()
	fl, err := f.svc.Filial.Create(f.ctx, filial.NewFilial(empresaID, codigo, "Filial "+codigo, matriz))
	require.NoError(t, err)
	return fl
}

func (f *fixture) agrupamento(t *testing.T, filialID id.ID, codigo string) *agrupamento.Agrupamento {
	t.Helper()
	a, err := f.svc.Agrupamento.Create(f.ctx, agrupamento.NewAgrupamento(filialID, codigo, "Agrupamento "+codigo, nil))
	require.NoError(t, err)
	return a
}

func (f *fixture) subAgrupamento(t *testing.T, agrupamentoID id.ID, codigo string) *subagrupamento.SubAgrupamento {
	t.Helper()
	s, err := f.svc.SubAgrupamento.Create(f.ctx, subagrupamento.NewSubAgrupamento(agrupamentoID, codigo, "Sub "+codigo, nil))
	require.NoError(t, err)
	return s
}

func (f *fixture) centroCusto(t *testing.T, subID id.ID, codigo string) *centrocusto.CentroCusto {
	t.Helper()
	c, err := f.svc.CentroCusto.Create(f.ctx, centrocusto.NewCentroCusto(subID, codigo, "Centro "+codigo, nil))
	require.NoError(t, err)
	return c
}

func (f *fixture) categoria(t *testing.T, ccID id.ID, pai *categoria.Categoria, codigo, nome string) *categoria.Categoria {
	t.Helper()
	nivel := categoria.NivelRaiz
	var paiID *id.ID
	if pai != nil {
		nivel = pai.Nivel + 1
		paiID = &pai.ID
	}
	c, err := f.svc.Categoria.Create(f.ctx, categoria.NewCategoria(ccID, paiID, nivel, codigo, nome, nil))
	require.NoError(t, err)
	return c
}

// chain builds Empresa → Filial (matriz) → Agrupamento → SubAgrupamento → CentroCusto.
func (f *fixture) chain(t *testing.T) *centrocusto.CentroCusto {
	t.Helper()
	e := f.empresa(t, "E01", "11.111.111/0001-11", "contato@empresa.com.br")
	fl := f.filial(t, e.ID, "F01", true)
	a := f.agrupamento(t, fl.ID, "AGR01")
	s := f.subAgrupamento(t, a.ID, "SUB01")
	return f.centroCusto(t, s.ID, "CC01")
}

// folha builds a level 1 → 2 → 3 branch and returns the leaf.
func (f *fixture) folha(t *testing.T, ccID id.ID) *categoria.Categoria {
	t.Helper()
	c1 := f.categoria(t, ccID, nil, "C1", "Bebidas")
	c2 := f.categoria(t, ccID, c1, "C2", "Alcoólicas")
	return f.categoria(t, ccID, c2, "C3", "Cervejas")
}

func (f *fixture) produto(t *testing.T, categoriaID id.ID, codigo string, venda, estoque bool) *produto.Produto {
	t.Helper()
	p, err := f.svc.Produto.Create(f.ctx, produto.NewProduto(categoriaID, codigo, "Produto "+codigo, decimal.RequireFromString("10.00"), venda, estoque))
	require.NoError(t, err)
	return p
}

func requireKind(t *testing.T, err error, kind apperror.Kind) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, appErr.Message)
	return appErr
}

func TestScenarioA_SingleMatrizPerEmpresa(t *testing.T) {
	f := newFixture(t)

	e := f.empresa(t, "E01", "11.111.111/0001-11", "contato@empresa.com.br")
	assert.Equal(t, "11111111000111", e.Cnpj)

	f1 := f.filial(t, e.ID, "F01", true)
	assert.Equal(t, e.Nome, f1.EmpresaNome)

	_, err := f.svc.Filial.Create(f.ctx, filial.NewFilial(e.ID, "F02", "Filial F02", true))
	appErr := requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, "a empresa já possui uma filial matriz ativa", appErr.Message)

	// A non-matriz branch and a matriz of another empresa are fine
	f.filial(t, e.ID, "F02", false)
	other := f.empresa(t, "E02", "22.222.222/0001-22", "outra@empresa.com.br")
	f.filial(t, other.ID, "F01", true)
}

func TestScenarioB_DependencyGuard(t *testing.T) {
	f := newFixture(t)

	e := f.empresa(t, "E01", "11111111000111", "a@b.com")
	fl := f.filial(t, e.ID, "F01", true)
	a := f.agrupamento(t, fl.ID, "AGR01")
	s1 := f.subAgrupamento(t, a.ID, "S1")

	err := f.svc.Agrupamento.Delete(f.ctx, a.ID)
	appErr := requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, apperror.CodeDependencyBlocked, appErr.Code)
	assert.Contains(t, appErr.Message, "1 sub-agrupamento(s) ativo(s)")
	assert.True(t, apperror.IsDependencyBlocked(err))

	require.NoError(t, f.svc.SubAgrupamento.Delete(f.ctx, s1.ID))
	require.NoError(t, f.svc.Agrupamento.Delete(f.ctx, a.ID))

	_, err = f.svc.Agrupamento.GetByID(f.ctx, a.ID)
	requireKind(t, err, apperror.KindNotFound)

	exists, err := f.svc.Agrupamento.Exists(f.ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func requireStillActive[T domain.Node](t *testing.T, ctx context.Context, get func(context.Context, id.ID) (T, error), nodeID id.ID, nome string) {
	t.Helper()
	got, err := get(ctx, nodeID)
	require.NoError(t, err)
	assert.True(t, got.IsAtiva())
	assert.Equal(t, nome, got.GetNome())
}

func TestDependencyGuards(t *testing.T) {
	f := newFixture(t)

	e := f.empresa(t, "E01", "11111111000111", "a@b.com")
	fl := f.filial(t, e.ID, "F01", true)
	a := f.agrupamento(t, fl.ID, "AGR01")
	s := f.subAgrupamento(t, a.ID, "SUB01")
	cc := f.centroCusto(t, s.ID, "CC01")
	c1 := f.categoria(t, cc.ID, nil, "C1", "Bebidas")
	c2 := f.categoria(t, cc.ID, c1, "C2", "Alcoólicas")
	c3 := f.categoria(t, cc.ID, c2, "C3", "Cervejas")
	f.produto(t, c3.ID, "P1", true, false)

	tests := []struct {
		name    string
		message string
		remove  func() error
		reread  func(t *testing.T)
	}{
		{
			name:    "empresa with filial",
			message: "não é possível excluir empresa: possui 1 filial(is) ativa(s)",
			remove:  func() error { return f.svc.Empresa.Delete(f.ctx, e.ID) },
			reread:  func(t *testing.T) { requireStillActive(t, f.ctx, f.svc.Empresa.GetByID, e.ID, e.Nome) },
		},
		{
			name:    "filial with agrupamento",
			message: "não é possível excluir filial: possui 1 agrupamento(s) ativo(s)",
			remove:  func() error { return f.svc.Filial.Delete(f.ctx, fl.ID) },
			reread:  func(t *testing.T) { requireStillActive(t, f.ctx, f.svc.Filial.GetByID, fl.ID, fl.Nome) },
		},
		{
			name:    "agrupamento with sub-agrupamento",
			message: "não é possível excluir agrupamento: possui 1 sub-agrupamento(s) ativo(s)",
			remove:  func() error { return f.svc.Agrupamento.Delete(f.ctx, a.ID) },
			reread:  func(t *testing.T) { requireStillActive(t, f.ctx, f.svc.Agrupamento.GetByID, a.ID, a.Nome) },
		},
		{
			name:    "sub-agrupamento with centro de custo",
			message: "não é possível excluir sub_agrupamento: possui 1 centro(s) de custo ativo(s)",
			remove:  func() error { return f.svc.SubAgrupamento.Delete(f.ctx, s.ID) },
			reread:  func(t *testing.T) { requireStillActive(t, f.ctx, f.svc.SubAgrupamento.GetByID, s.ID, s.Nome) },
		},
		{
			name:    "centro de custo with categoria",
			message: "não é possível excluir centro_custo: possui 3 categoria(s) ativa(s)",
			remove:  func() error { return f.svc.CentroCusto.Delete(f.ctx, cc.ID) },
			reread:  func(t *testing.T) { requireStillActive(t, f.ctx, f.svc.CentroCusto.GetByID, cc.ID, cc.Nome) },
		},
		{
			name:    "categoria with child categoria",
			message: "não é possível excluir categoria: possui 1 categoria(s) filha(s) ativa(s)",
			remove:  func() error { return f.svc.Categoria.Delete(f.ctx, c1.ID) },
			reread:  func(t *testing.T) { requireStillActive(t, f.ctx, f.svc.Categoria.GetByID, c1.ID, c1.Nome) },
		},
		{
			name:    "categoria with produto",
			message: "não é possível excluir categoria: possui 1 produto(s) ativo(s)",
			remove:  func() error { return f.svc.Categoria.Delete(f.ctx, c3.ID) },
			reread:  func(t *testing.T) { requireStillActive(t, f.ctx, f.svc.Categoria.GetByID, c3.ID, c3.Nome) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.remove()
			appErr := requireKind(t, err, apperror.KindConflict)
			assert.Equal(t, apperror.CodeDependencyBlocked, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)

			tt.reread(t)
		})
	}
}

func TestScenarioC_ProdutoRequiresLeafCategoria(t *testing.T) {
	f := newFixture(t)
	cc := f.chain(t)

	c1 := f.categoria(t, cc.ID, nil, "C1", "Bebidas")
	c2 := f.categoria(t, cc.ID, c1, "C2", "Alcoólicas")

	_, err := f.svc.Produto.Create(f.ctx, produto.NewProduto(c2.ID, "P1", "Chopp", decimal.RequireFromString("10.00"), true, false))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "produtos só podem ser vinculados a categorias de nível 3", appErr.Fields()["categoriaId"])

	c3 := f.categoria(t, cc.ID, c2, "C3", "Cervejas")
	p, err := f.svc.Produto.Create(f.ctx, produto.NewProduto(c3.ID, "P1", "Chopp", decimal.RequireFromString("10.00"), true, false))
	require.NoError(t, err)

	assert.True(t, p.Ativa)
	assert.Equal(t, "Cervejas", p.CategoriaNome)
	assert.Equal(t, cc.ID, p.CentroCustoID)
	assert.Equal(t, cc.EmpresaID, p.EmpresaID)
	assert.Equal(t, cc.FilialID, p.FilialID)
}

func TestScenarioD_ProdutoValidation(t *testing.T) {
	f := newFixture(t)
	leaf := f.folha(t, f.chain(t).ID)

	tests := []struct {
		name    string
		preco   string
		venda   bool
		estoque bool
		field   string
		message string
	}{
		{name: "zero price", preco: "0", venda: true, field: "preco", message: "preço deve ser maior que zero"},
		{name: "negative price", preco: "-5", venda: true, field: "preco", message: "preço deve ser maior que zero"},
		{name: "no flag", preco: "9.99", field: "produtoVenda", message: "deve ser marcado como Produto de Venda ou Estoque"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := produto.NewProduto(leaf.ID, "P1", "Produto", decimal.RequireFromString(tt.preco), tt.venda, tt.estoque)
			_, err := f.svc.Produto.Create(f.ctx, p)
			appErr := requireKind(t, err, apperror.KindValidation)
			assert.Equal(t, tt.message, appErr.Fields()[tt.field])
		})
	}
}

func TestUniqueness(t *testing.T) {
	f := newFixture(t)
	e := f.empresa(t, "E01", "11.111.111/0001-11", "contato@empresa.com.br")

	t.Run("empresa cnpj", func(t *testing.T) {
		_, err := f.svc.Empresa.Create(f.ctx, empresa.NewEmpresa("E09", "Outra", "11111111000111", "x@y.com", validEndereco()))
		appErr := requireKind(t, err, apperror.KindConflict)
		assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
		assert.Equal(t, "cnpj", appErr.Details["field"])
	})

	t.Run("empresa email ignores case", func(t *testing.T) {
		_, err := f.svc.Empresa.Create(f.ctx, empresa.NewEmpresa("E09", "Outra", "99999999000199", "CONTATO@Empresa.com.br", validEndereco()))
		requireKind(t, err, apperror.KindConflict)
	})

	t.Run("filial codigo scoped to empresa", func(t *testing.T) {
		f.filial(t, e.ID, "F01", false)

		_, err := f.svc.Filial.Create(f.ctx, filial.NewFilial(e.ID, "F01", "Outro nome", false))
		requireKind(t, err, apperror.KindConflict)

		other := f.empresa(t, "E02", "22222222000122", "e2@empresa.com.br")
		f.filial(t, other.ID, "F01", false)
	})

	t.Run("agrupamento nome scoped to filial", func(t *testing.T) {
		fl := f.filial(t, e.ID, "F10", false)
		f.agrupamento(t, fl.ID, "AGR01")

		_, err := f.svc.Agrupamento.Create(f.ctx, agrupamento.NewAgrupamento(fl.ID, "AGR02", "Agrupamento AGR01", nil))
		requireKind(t, err, apperror.KindConflict)
	})
}

func TestParentGating(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Filial.Create(f.ctx, filial.NewFilial(id.New(), "F01", "Filial", false))
	requireKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Filial.Create(f.ctx, filial.NewFilial(id.Nil(), "F01", "Filial", false))
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Contains(t, appErr.Fields(), "empresaId")

	e := f.empresa(t, "E01", "11111111000111", "a@b.com")
	require.NoError(t, f.svc.Empresa.Delete(f.ctx, e.ID))

	_, err = f.svc.Filial.Create(f.ctx, filial.NewFilial(e.ID, "F01", "Filial", false))
	requireKind(t, err, apperror.KindNotFound)
}

func TestRecreateAfterDelete(t *testing.T) {
	f := newFixture(t)
	e := f.empresa(t, "E01", "11111111000111", "a@b.com")
	fl := f.filial(t, e.ID, "F01", true)

	a := f.agrupamento(t, fl.ID, "AGR01")
	require.NoError(t, f.svc.Agrupamento.Delete(f.ctx, a.ID))

	again := f.agrupamento(t, fl.ID, "AGR01")
	assert.NotEqual(t, a.ID, again.ID)

	result, err := f.svc.Agrupamento.List(f.ctx, domain.ListFilter{ParentID: &fl.ID})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, again.ID, result.Items[0].ID)
}

func TestCategoriaHierarchy(t *testing.T) {
	f := newFixture(t)
	cc := f.chain(t)
	c1 := f.categoria(t, cc.ID, nil, "C1", "Bebidas")
	c2 := f.categoria(t, cc.ID, c1, "C2", "Alcoólicas")

	otherCC := f.centroCusto(t, cc.SubAgrupamentoID, "CC02")
	foreign := f.categoria(t, otherCC.ID, nil, "X1", "Externa")

	tests := []struct {
		name    string
		nivel   int
		pai     *id.ID
		field   string
		message string
	}{
		{name: "root with parent", nivel: 1, pai: &c1.ID, field: "categoriaPaiId",
			message: "categorias de nível 1 não possuem categoria pai"},
		{name: "child without parent", nivel: 2, field: "categoriaPaiId",
			message: "categorias de nível 2 ou 3 exigem categoria pai"},
		{name: "level out of range", nivel: 4, pai: &c2.ID, field: "nivel",
			message: "nível deve ser 1, 2 ou 3"},
		{name: "level 2 under level 2", nivel: 2, pai: &c2.ID, field: "categoriaPaiId",
			message: "categoria pai deve ser de nível 1"},
		{name: "level 3 under level 1", nivel: 3, pai: &c1.ID, field: "categoriaPaiId",
			message: "categoria pai deve ser de nível 2"},
		{name: "parent of another centro de custo", nivel: 2, pai: &foreign.ID, field: "categoriaPaiId",
			message: "categoria pai deve pertencer ao mesmo centro de custo"},
		{name: "missing parent", nivel: 2, pai: func() *id.ID { ghost := id.New(); return &ghost }(), field: "categoriaPaiId",
			message: "categoria pai não encontrada ou inativa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Categoria.Create(f.ctx, categoria.NewCategoria(cc.ID, tt.pai, tt.nivel, "N1", "Nova", nil))
			appErr := requireKind(t, err, apperror.KindValidation)
			assert.Equal(t, tt.message, appErr.Fields()[tt.field])
		})
	}

	t.Run("sibling names are unique per parent", func(t *testing.T) {
		_, err := f.svc.Categoria.Create(f.ctx, categoria.NewCategoria(cc.ID, nil, 1, "C9", "Bebidas", nil))
		requireKind(t, err, apperror.KindConflict)

		// Same name under another parent is allowed
		f.categoria(t, cc.ID, c2, "C4", "Bebidas")
	})

	t.Run("codigo is unique per centro de custo", func(t *testing.T) {
		_, err := f.svc.Categoria.Create(f.ctx, categoria.NewCategoria(cc.ID, nil, 1, "C1", "Comidas", nil))
		requireKind(t, err, apperror.KindConflict)
	})

	t.Run("level is immutable", func(t *testing.T) {
		current, err := f.svc.Categoria.GetByID(f.ctx, c2.ID)
		require.NoError(t, err)
		current.Nivel = 3

		_, err = f.svc.Categoria.Update(f.ctx, current)
		appErr := requireKind(t, err, apperror.KindValidation)
		assert.Contains(t, appErr.Fields(), "nivel")
	})

	t.Run("parent with children cannot be deleted", func(t *testing.T) {
		err := f.svc.Categoria.Delete(f.ctx, c1.ID)
		requireKind(t, err, apperror.KindConflict)
	})
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	e := f.empresa(t, "E01", "11111111000111", "a@b.com")
	other := f.empresa(t, "E02", "22222222000122", "c@d.com")

	current, err := f.svc.Empresa.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	current.Rename("E01", "Empresa Renomeada", nil)

	updated, err := f.svc.Empresa.Update(f.ctx, current)
	require.NoError(t, err)
	assert.Equal(t, "Empresa Renomeada", updated.Nome)
	assert.NotNil(t, updated.DataUltimaAlteracao)
	assert.True(t, updated.Ativa)

	updated.SetContato(other.Cnpj, updated.Email)
	_, err = f.svc.Empresa.Update(f.ctx, updated)
	requireKind(t, err, apperror.KindConflict)

	t.Run("parent is immutable", func(t *testing.T) {
		fl := f.filial(t, e.ID, "F01", true)
		fl.EmpresaID = other.ID

		_, err := f.svc.Filial.Update(f.ctx, fl)
		appErr := requireKind(t, err, apperror.KindValidation)
		assert.Contains(t, appErr.Fields(), "empresaId")
	})

	t.Run("missing node", func(t *testing.T) {
		ghost := empresa.NewEmpresa("E99", "Fantasma", "99999999000199", "g@h.com", validEndereco())
		_, err := f.svc.Empresa.Update(f.ctx, ghost)
		requireKind(t, err, apperror.KindNotFound)
	})
}

func TestList(t *testing.T) {
	f := newFixture(t)
	e1 := f.empresa(t, "E01", "11111111000111", "a@b.com")
	e2 := f.empresa(t, "E02", "22222222000122", "c@d.com")
	f1 := f.filial(t, e1.ID, "F01", true)
	f2 := f.filial(t, e2.ID, "F01", true)

	f.agrupamento(t, f1.ID, "BEB")
	f.agrupamento(t, f1.ID, "COZ")
	f.agrupamento(t, f2.ID, "BAR")

	t.Run("by ancestor", func(t *testing.T) {
		result, err := f.svc.Agrupamento.List(f.ctx, domain.ListFilter{
			AdvancedFilters: []filter.Item{filter.Eq("empresa_id", e1.ID)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalCount)
	})

	t.Run("search and pagination", func(t *testing.T) {
		result, err := f.svc.Agrupamento.List(f.ctx, domain.ListFilter{Search: "agrupamento", OrderBy: "-codigo", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.TotalCount)
		require.Len(t, result.Items, 2)
		assert.Equal(t, "COZ", result.Items[0].Codigo)
		assert.Equal(t, "BEB", result.Items[1].Codigo)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		result, err := f.svc.Agrupamento.List(f.ctx, domain.ListFilter{Search: "inexistente"})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
	})

	t.Run("unknown order column", func(t *testing.T) {
		_, err := f.svc.Agrupamento.List(f.ctx, domain.ListFilter{OrderBy: "senha"})
		requireKind(t, err, apperror.KindValidation)
	})
}

func TestArvore(t *testing.T) {
	f := newFixture(t)
	cc := f.chain(t)
	leaf := f.folha(t, cc.ID)

	arvore, err := f.svc.Categoria.Arvore(f.ctx, cc.ID)
	require.NoError(t, err)
	require.Len(t, arvore, 1)
	require.Len(t, arvore[0].Filhas, 1)
	require.Len(t, arvore[0].Filhas[0].Filhas, 1)
	assert.Equal(t, leaf.ID, arvore[0].Filhas[0].Filhas[0].ID)

	_, err = f.cache.Get(f.ctx, "categorias:arvore:"+cc.ID.String())
	require.NoError(t, err, "tree should be cached")

	// A change to the tree invalidates the cached projection
	f.categoria(t, cc.ID, nil, "C0", "Alimentos")

	arvore, err = f.svc.Categoria.Arvore(f.ctx, cc.ID)
	require.NoError(t, err)
	require.Len(t, arvore, 2)
	assert.Equal(t, "Alimentos", arvore[0].Nome)
	assert.Equal(t, "Bebidas", arvore[1].Nome)
}

func TestFichaTecnica(t *testing.T) {
	f := newFixture(t)
	leaf := f.folha(t, f.chain(t).ID)

	prato := f.produto(t, leaf.ID, "P1", true, false)
	malte := f.produto(t, leaf.ID, "I1", false, true)
	vendaOnly := f.produto(t, leaf.ID, "V1", true, false)
	qty := decimal.RequireFromString("0.250")

	_, err := f.svc.Ficha.Add(f.ctx, prato.ID, vendaOnly.ID, qty, nil)
	requireKind(t, err, apperror.KindValidation)

	_, err = f.svc.Ficha.Add(f.ctx, prato.ID, prato.ID, qty, nil)
	requireKind(t, err, apperror.KindValidation)

	_, err = f.svc.Ficha.Add(f.ctx, prato.ID, malte.ID, decimal.Zero, nil)
	requireKind(t, err, apperror.KindValidation)

	link, err := f.svc.Ficha.Add(f.ctx, prato.ID, malte.ID, qty, nil)
	require.NoError(t, err)
	assert.Equal(t, malte.Nome, link.IngredienteNome)

	_, err = f.svc.Ficha.Add(f.ctx, prato.ID, malte.ID, qty, nil)
	requireKind(t, err, apperror.KindConflict)

	t.Run("ingredient of another empresa", func(t *testing.T) {
		e2 := f.empresa(t, "E02", "22222222000122", "e2@empresa.com.br")
		fl2 := f.filial(t, e2.ID, "F01", true)
		cc2 := f.centroCusto(t, f.subAgrupamento(t, f.agrupamento(t, fl2.ID, "AGR01").ID, "SUB01").ID, "CC01")
		lupulo := f.produto(t, f.folha(t, cc2.ID).ID, "I2", false, true)
		require.NotEqual(t, prato.EmpresaID, lupulo.EmpresaID)

		_, err := f.svc.Ficha.Add(f.ctx, prato.ID, lupulo.ID, qty, nil)
		appErr := requireKind(t, err, apperror.KindValidation)
		assert.Equal(t, "o ingrediente deve pertencer à mesma empresa do produto", appErr.Fields()["ingredienteId"])
	})

	t.Run("linked ingredient stays a stock item", func(t *testing.T) {
		current, err := f.svc.Produto.GetByID(f.ctx, malte.ID)
		require.NoError(t, err)
		current.ProdutoVenda = true
		current.ProdutoEstoque = false

		_, err = f.svc.Produto.Update(f.ctx, current)
		appErr := requireKind(t, err, apperror.KindValidation)
		assert.Equal(t, "o produto é ingrediente de 1 ficha(s) técnica(s) ativa(s)", appErr.Fields()["produtoEstoque"])

		again, err := f.svc.Produto.GetByID(f.ctx, malte.ID)
		require.NoError(t, err)
		assert.True(t, again.ProdutoEstoque)
	})

	links, err := f.svc.Ficha.List(f.ctx, prato.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, qty.Equal(links[0].Quantidade))

	// Active links guard both sides of the relation
	requireKind(t, f.svc.Produto.Delete(f.ctx, prato.ID), apperror.KindConflict)
	requireKind(t, f.svc.Produto.Delete(f.ctx, malte.ID), apperror.KindConflict)

	requireKind(t, f.svc.Ficha.Remove(f.ctx, malte.ID, link.ID), apperror.KindNotFound)
	require.NoError(t, f.svc.Ficha.Remove(f.ctx, prato.ID, link.ID))

	links, err = f.svc.Ficha.List(f.ctx, prato.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	// Once unlinked the ingredient may stop being a stock item
	current, err := f.svc.Produto.GetByID(f.ctx, malte.ID)
	require.NoError(t, err)
	current.ProdutoVenda = true
	current.ProdutoEstoque = false
	_, err = f.svc.Produto.Update(f.ctx, current)
	require.NoError(t, err)

	require.NoError(t, f.svc.Produto.Delete(f.ctx, prato.ID))
	require.NoError(t, f.svc.Produto.Delete(f.ctx, malte.ID))

	_, err = f.svc.Ficha.List(f.ctx, prato.ID)
	requireKind(t, err, apperror.KindNotFound)
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	store := memory.NewAuditStore()
	f.svc.AttachAudit(store)

	e := f.empresa(t, "E01", "11111111000111", "a@b.com")
	fl := f.filial(t, e.ID, "F01", true)
	a := f.agrupamento(t, fl.ID, "AGR01")

	a.Rename("AGR01", "Bebidas", nil)
	_, err := f.svc.Agrupamento.Update(f.ctx, a)
	require.NoError(t, err)
	require.NoError(t, f.svc.Agrupamento.Delete(f.ctx, a.ID))

	// Failed operations are not recorded
	_, err = f.svc.Agrupamento.Create(f.ctx, agrupamento.NewAgrupamento(id.New(), "X", "X", nil))
	require.Error(t, err)

	history, err := store.History(f.ctx, agrupamento.EntityName, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, audit.ActionDelete, history[0].Action)
	assert.Equal(t, audit.ActionUpdate, history[1].Action)
	assert.Equal(t, audit.ActionCreate, history[2].Action)
	assert.Contains(t, string(history[1].Snapshot), "Bebidas")
}

func TestObserver(t *testing.T) {
	type call struct {
		entity string
		op     domain.Operation
		kind   apperror.Kind
	}
	var calls []call

	f := newFixture(t, func(o *catalogs.Options) {
		o.Observer = func(ctx context.Context, entity string, op domain.Operation, err error) {
			c := call{entity: entity, op: op}
			if err != nil {
				c.kind = apperror.KindOf(err)
			}
			calls = append(calls, c)
		}
	})

	f.empresa(t, "E01", "11111111000111", "a@b.com")
	_, err := f.svc.Empresa.Create(f.ctx, empresa.NewEmpresa("E02", "Outra", "11111111000111", "x@y.com", validEndereco()))
	require.Error(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, call{entity: empresa.EntityName, op: domain.OpCreate}, calls[0])
	assert.Equal(t, call{entity: empresa.EntityName, op: domain.OpCreate, kind: apperror.KindConflict}, calls[1])
}

func TestFichaObserverAndAfterHooks(t *testing.T) {
	var calls []apperror.Kind
	f := newFixture(t, func(o *catalogs.Options) {
		o.Observer = func(ctx context.Context, entity string, op domain.Operation, err error) {
			if entity == produto.IngredienteEntityName && op == domain.OpCreate {
				calls = append(calls, apperror.KindOf(err))
			}
		}
	})

	core, logs := zapobserver.New(zapcore.WarnLevel)
	prev := logger.Default()
	logger.SetDefault(&logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	t.Cleanup(func() { logger.SetDefault(prev) })

	f.svc.Ficha.Hooks().OnAfterCreate(func(ctx context.Context, link *produto.Ingrediente) error {
		return errors.New("audit store unavailable")
	})

	leaf := f.folha(t, f.chain(t).ID)
	prato := f.produto(t, leaf.ID, "P1", true, false)
	malte := f.produto(t, leaf.ID, "I1", false, true)

	_, err := f.svc.Ficha.Add(f.ctx, prato.ID, malte.ID, decimal.Zero, nil)
	requireKind(t, err, apperror.KindValidation)

	// A failing after-hook does not undo the committed link
	link, err := f.svc.Ficha.Add(f.ctx, prato.ID, malte.ID, decimal.RequireFromString("1"), nil)
	require.NoError(t, err)
	assert.NotNil(t, link)

	assert.Equal(t, []apperror.Kind{apperror.KindValidation, ""}, calls)
	assert.Equal(t, 1, logs.FilterMessage("after hook failed").Len())
}
