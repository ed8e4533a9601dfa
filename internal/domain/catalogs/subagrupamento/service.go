package subagrupamento

import (
	"fmt"

	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
)

// EntityName is the kind name used in messages, permissions and audit entries.
const EntityName = "sub_agrupamento"

// Repository defines the interface for sub-agrupamento storage.
type Repository interface {
	domain.Repository[*SubAgrupamento]
}

// Service provides business logic for the SubAgrupamento catalog.
type Service struct {
	*domain.HierarchyService[*SubAgrupamento]
}

// NewService creates the SubAgrupamento service.
func NewService(repo Repository, txm tx.Manager, agrupamentos domain.Existence, centrosCusto domain.Counter) *Service {
	byAgrupamento := func(s *SubAgrupamento) domain.Scope { return domain.Scope{"agrupamento_id": s.AgrupamentoID} }

	base := domain.NewHierarchyService(domain.HierarchyServiceConfig[*SubAgrupamento]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: EntityName,
		Parent: &domain.ParentRef[*SubAgrupamento]{
			Entity: "agrupamento",
			Field:  "agrupamentoId",
			ID:     func(s *SubAgrupamento) id.ID { return s.AgrupamentoID },
			Exists: agrupamentos,
		},
		CodeScope: byAgrupamento,
		NameScope: byAgrupamento,
		Guards: []domain.ChildGuard{
			{
				Kind:     "centro_custo",
				Column:   "sub_agrupamento_id",
				Children: centrosCusto,
				Describe: func(n int) string { return fmt.Sprintf("%d centro(s) de custo ativo(s)", n) },
			},
		},
	})

	return &Service{HierarchyService: base}
}
