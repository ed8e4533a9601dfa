package centrocusto

import (
	"fmt"

	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
)

// EntityName is the kind name used in messages, permissions and audit entries.
const EntityName = "centro_custo"

// Repository defines the interface for centro de custo storage.
type Repository interface {
	domain.Repository[*CentroCusto]
}

// Service provides business logic for the CentroCusto catalog.
type Service struct {
	*domain.HierarchyService[*CentroCusto]
}

// NewService creates the CentroCusto service.
func NewService(repo Repository, txm tx.Manager, subAgrupamentos domain.Existence, categorias domain.Counter) *Service {
	bySub := func(c *CentroCusto) domain.Scope { return domain.Scope{"sub_agrupamento_id": c.SubAgrupamentoID} }

	base := domain.NewHierarchyService(domain.HierarchyServiceConfig[*CentroCusto]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: EntityName,
		Parent: &domain.ParentRef[*CentroCusto]{
			Entity: "sub_agrupamento",
			Field:  "subAgrupamentoId",
			ID:     func(c *CentroCusto) id.ID { return c.SubAgrupamentoID },
			Exists: subAgrupamentos,
		},
		CodeScope: bySub,
		NameScope: bySub,
		Guards: []domain.ChildGuard{
			{
				Kind:     "categoria",
				Column:   "centro_custo_id",
				Children: categorias,
				Describe: func(n int) string { return fmt.Sprintf("%d categoria(s) ativa(s)", n) },
			},
		},
	})

	return &Service{HierarchyService: base}
}
