package agrupamento

import (
	"fmt"

	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
)

// EntityName is the kind name used in messages, permissions and audit entries.
const EntityName = "agrupamento"

// Repository defines the interface for agrupamento storage.
type Repository interface {
	domain.Repository[*Agrupamento]
}

// Service provides business logic for the Agrupamento catalog.
type Service struct {
	*domain.HierarchyService[*Agrupamento]
}

// NewService creates the Agrupamento service.
func NewService(repo Repository, txm tx.Manager, filiais domain.Existence, subAgrupamentos domain.Counter) *Service {
	byFilial := func(a *Agrupamento) domain.Scope { return domain.Scope{"filial_id": a.FilialID} }

	base := domain.NewHierarchyService(domain.HierarchyServiceConfig[*Agrupamento]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: EntityName,
		Parent: &domain.ParentRef[*Agrupamento]{
			Entity: "filial",
			Field:  "filialId",
			ID:     func(a *Agrupamento) id.ID { return a.FilialID },
			Exists: filiais,
		},
		CodeScope: byFilial,
		NameScope: byFilial,
		Guards: []domain.ChildGuard{
			{
				Kind:     "sub_agrupamento",
				Column:   "agrupamento_id",
				Children: subAgrupamentos,
				Describe: func(n int) string { return fmt.Sprintf("%d sub-agrupamento(s) ativo(s)", n) },
			},
		},
	})

	return &Service{HierarchyService: base}
}
