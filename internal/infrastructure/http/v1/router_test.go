package v1_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaguarda/internal/core/apperror"
	appctx "retaguarda/internal/core/context"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/catalogs"
	"retaguarda/internal/domain/catalogs/empresa"
	memcache "retaguarda/internal/infrastructure/cache"
	v1 "retaguarda/internal/infrastructure/http/v1"
	"retaguarda/internal/infrastructure/storage/memory"
	"retaguarda/pkg/logger"
)

type apiFixture struct {
	t        *testing.T
	router   *gin.Engine
	services *catalogs.Services
	token    string
}

func newAPI(t *testing.T, validator *stubValidator) *apiFixture {
	t.Helper()

	cat := memory.NewCatalog()
	store := memory.NewAuditStore()
	services := catalogs.NewServices(cat.Repos(), cat.TxManager, catalogs.Options{Cache: memcache.NewMemoryCache()})
	services.AttachAudit(store)

	cfg := v1.RouterConfig{
		Services: services,
		Audit:    store,
		Logger:   logger.NewNop(),
	}
	if validator != nil {
		cfg.JWTValidator = validator
	}

	return &apiFixture{t: t, router: v1.NewRouter(cfg), services: services}
}

func (a *apiFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// create posts body and returns the id of the created node.
func (a *apiFixture) create(path string, body any) string {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func endereco() map[string]any {
	return map[string]any{
		"logradouro": "Av. Paulista",
		"numero":     "1000",
		"cep":        "01310-100",
		"bairro":     "Bela Vista",
		"cidade":     "São Paulo",
		"uf":         "SP",
	}
}

func empresaBody(codigo, cnpj, email string) map[string]any {
	return map[string]any{
		"codigo":   codigo,
		"nome":     "Empresa " + codigo,
		"cnpj":     cnpj,
		"email":    email,
		"endereco": endereco(),
	}
}

// hierarchy creates empresa → filial → agrupamento → sub-agrupamento → centro de custo
// and returns their ids in that order.
func (a *apiFixture) hierarchy() []string {
	a.t.Helper()
	empresaID := a.create("/api/v1/empresas", empresaBody("E01", "11.111.111/0001-11", "e01@rede.com.br"))
	filialID := a.create("/api/v1/filiais", map[string]any{"empresaId": empresaID, "codigo": "F01", "nome": "Matriz", "matriz": true})
	agrupamentoID := a.create("/api/v1/agrupamentos", map[string]any{"filialId": filialID, "codigo": "A01", "nome": "Bebidas"})
	subID := a.create("/api/v1/sub-agrupamentos", map[string]any{"agrupamentoId": agrupamentoID, "codigo": "S01", "nome": "Bar"})
	ccID := a.create("/api/v1/centros-custo", map[string]any{"subAgrupamentoId": subID, "codigo": "CC01", "nome": "Balcão"})
	return []string{empresaID, filialID, agrupamentoID, subID, ccID}
}

func TestEmpresaLifecycle(t *testing.T) {
	api := newAPI(t, nil)

	w := api.do(http.MethodGet, "/api/v1/empresas", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	empresaID := api.create("/api/v1/empresas", empresaBody("E01", "11.111.111/0001-11", "e01@rede.com.br"))

	w = api.do(http.MethodGet, "/api/v1/empresas/"+empresaID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "11111111000111", body["cnpj"])
	assert.Equal(t, "01310100", body["endereco"].(map[string]any)["cep"])

	w = api.do(http.MethodPost, "/api/v1/empresas", empresaBody("E02", "11111111000111", "outra@rede.com.br"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeDuplicate, decode(t, w)["code"])

	update := empresaBody("E01", "11111111000111", "e01@rede.com.br")
	update["nome"] = "Rede Sabor"
	w = api.do(http.MethodPut, "/api/v1/empresas/"+empresaID, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Rede Sabor", decode(t, w)["nome"])

	w = api.do(http.MethodGet, "/api/v1/empresas?search=sabor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["totalCount"])

	w = api.do(http.MethodDelete, "/api/v1/empresas/"+empresaID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/v1/empresas/"+empresaID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/v1/empresas/"+empresaID+"/auditoria", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "delete", items[0].(map[string]any)["action"])
}

func TestRequestErrors(t *testing.T) {
	api := newAPI(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"invalid id", http.MethodGet, "/api/v1/filiais/not-an-id", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/v1/filiais/" + id.New().String(), nil, http.StatusNotFound},
		{"invalid body", http.MethodPost, "/api/v1/agrupamentos", map[string]any{"codigo": ""}, http.StatusBadRequest},
		{"missing parent", http.MethodPost, "/api/v1/agrupamentos", map[string]any{"filialId": id.New(), "codigo": "A1", "nome": "A"}, http.StatusNotFound},
		{"invalid parent filter", http.MethodGet, "/api/v1/agrupamentos?filialId=xyz", nil, http.StatusBadRequest},
		{"invalid order", http.MethodGet, "/api/v1/agrupamentos?orderBy=senha", nil, http.StatusBadRequest},
		{"tree without centro de custo", http.MethodGet, "/api/v1/categorias/arvore", nil, http.StatusBadRequest},
		{"delete unknown", http.MethodDelete, "/api/v1/produtos/" + id.New().String(), nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestMatrizAndDependencyConflicts(t *testing.T) {
	api := newAPI(t, nil)
	ids := api.hierarchy()
	empresaID, agrupamentoID := ids[0], ids[2]

	w := api.do(http.MethodPost, "/api/v1/filiais", map[string]any{"empresaId": empresaID, "codigo": "F02", "nome": "Outra", "matriz": true})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "a empresa já possui uma filial matriz ativa", decode(t, w)["message"])

	w = api.do(http.MethodDelete, "/api/v1/agrupamentos/"+agrupamentoID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeDependencyBlocked, decode(t, w)["code"])

	w = api.do(http.MethodGet, "/api/v1/sub-agrupamentos?agrupamentoId="+agrupamentoID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["totalCount"])
}

func TestCategoriasAndFichaTecnica(t *testing.T) {
	api := newAPI(t, nil)
	ccID := api.hierarchy()[4]

	w := api.do(http.MethodGet, "/api/v1/categorias/arvore?centroCustoId="+ccID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	c1 := api.create("/api/v1/categorias", map[string]any{"centroCustoId": ccID, "nivel": 1, "codigo": "C1", "nome": "Bebidas"})
	c2 := api.create("/api/v1/categorias", map[string]any{"centroCustoId": ccID, "nivel": 2, "categoriaPaiId": c1, "codigo": "C2", "nome": "Chopes"})

	w = api.do(http.MethodPost, "/api/v1/produtos", map[string]any{"categoriaId": c2, "codigo": "P1", "nome": "Chopp", "preco": "12.50", "produtoVenda": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c3 := api.create("/api/v1/categorias", map[string]any{"centroCustoId": ccID, "nivel": 3, "categoriaPaiId": c2, "codigo": "C3", "nome": "Pilsen"})

	w = api.do(http.MethodGet, "/api/v1/categorias/arvore?centroCustoId="+ccID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	roots := decode(t, w)["items"].([]any)
	require.Len(t, roots, 1)
	assert.Equal(t, "Bebidas", roots[0].(map[string]any)["nome"])

	chopp := api.create("/api/v1/produtos", map[string]any{"categoriaId": c3, "codigo": "P1", "nome": "Chopp", "preco": "12.50", "produtoVenda": true})
	malte := api.create("/api/v1/produtos", map[string]any{"categoriaId": c3, "codigo": "I1", "nome": "Malte", "preco": "3.00", "produtoEstoque": true})

	base := "/api/v1/produtos/" + chopp + "/ingredientes"
	w = api.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodPost, base, map[string]any{"ingredienteId": malte, "quantidade": "0.2", "unidadeMedida": "KG"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	linkID := decode(t, w)["id"].(string)

	w = api.do(http.MethodPost, base, map[string]any{"ingredienteId": malte, "quantidade": "0.2"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"].([]any), 1)

	w = api.do(http.MethodDelete, "/api/v1/produtos/"+malte, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodDelete, base+"/"+linkID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodDelete, "/api/v1/produtos/"+malte, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type stubValidator struct {
	user *appctx.UserContext
}

func (s *stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "valid" {
		return nil, errors.New("invalid token")
	}
	return s.user, nil
}

func TestClaimScopedListing(t *testing.T) {
	validator := &stubValidator{}
	api := newAPI(t, validator)
	ctx := t.Context()

	mine, err := api.services.Empresa.Create(ctx, empresa.NewEmpresa("E01", "Minha", "11111111000111", "a@rede.com", entity.Endereco{
		Logradouro: "Rua A", Numero: "1", Cep: "01001000", Bairro: "Centro", Cidade: "São Paulo", Uf: "SP",
	}))
	require.NoError(t, err)
	_, err = api.services.Empresa.Create(ctx, empresa.NewEmpresa("E02", "Outra", "22222222000122", "b@rede.com", entity.Endereco{
		Logradouro: "Rua B", Numero: "2", Cep: "01001000", Bairro: "Centro", Cidade: "São Paulo", Uf: "SP",
	}))
	require.NoError(t, err)

	w := api.do(http.MethodGet, "/api/v1/empresas", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	api.token = "valid"
	validator.user = &appctx.UserContext{
		UserID:      "u1",
		EmpresaID:   mine.ID.String(),
		Permissions: []string{"cadastro:empresa:read"},
	}

	w = api.do(http.MethodGet, "/api/v1/empresas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["totalCount"])
	assert.Equal(t, mine.ID.String(), body["items"].([]any)[0].(map[string]any)["id"])

	w = api.do(http.MethodDelete, "/api/v1/empresas/"+mine.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	validator.user = &appctx.UserContext{UserID: "u2", Permissions: []string{"cadastro:empresa:read"}}
	w = api.do(http.MethodGet, "/api/v1/empresas", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	api := newAPI(t, nil)

	w := api.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
