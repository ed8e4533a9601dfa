package filial

import (
	"fmt"

	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
)

// EntityName is the kind name used in messages, permissions and audit entries.
const EntityName = "filial"

// Repository defines the interface for filial storage.
type Repository interface {
	domain.Repository[*Filial]
}

// Service provides business logic for the Filial catalog.
type Service struct {
	*domain.HierarchyService[*Filial]
}

// NewService creates the Filial service.
func NewService(repo Repository, txm tx.Manager, empresas domain.Existence, agrupamentos domain.Counter) *Service {
	byEmpresa := func(f *Filial) domain.Scope { return domain.Scope{"empresa_id": f.EmpresaID} }

	base := domain.NewHierarchyService(domain.HierarchyServiceConfig[*Filial]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: EntityName,
		Parent: &domain.ParentRef[*Filial]{
			Entity: "empresa",
			Field:  "empresaId",
			ID:     func(f *Filial) id.ID { return f.EmpresaID },
			Exists: empresas,
		},
		CodeScope: byEmpresa,
		NameScope: byEmpresa,
		Unique: []domain.UniqueRule[*Filial]{
			{
				Column: "matriz",
				Field:  "matriz",
				Value: func(f *Filial) any {
					if !f.Matriz {
						return nil
					}
					return true
				},
				Scope:   byEmpresa,
				Message: "a empresa já possui uma filial matriz ativa",
			},
		},
		Guards: []domain.ChildGuard{
			{
				Kind:     "agrupamento",
				Column:   "filial_id",
				Children: agrupamentos,
				Describe: func(n int) string { return fmt.Sprintf("%d agrupamento(s) ativo(s)", n) },
			},
		},
	})

	return &Service{HierarchyService: base}
}
