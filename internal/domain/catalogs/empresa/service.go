package empresa

import (
	"fmt"

	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
)

// EntityName is the kind name used in messages, permissions and audit entries.
const EntityName = "empresa"

// Repository defines the interface for empresa storage.
type Repository interface {
	domain.Repository[*Empresa]
}

// Service provides business logic for the Empresa catalog.
type Service struct {
	*domain.HierarchyService[*Empresa]
}

// NewService creates the Empresa service. filiais is the child store guarding deletion.
func NewService(repo Repository, txm tx.Manager, filiais domain.Counter) *Service {
	base := domain.NewHierarchyService(domain.HierarchyServiceConfig[*Empresa]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: EntityName,
		Unique: []domain.UniqueRule[*Empresa]{
			{Column: "cnpj", Field: "cnpj", Value: func(e *Empresa) any { return e.Cnpj }},
			{Column: "email", Field: "email", Value: func(e *Empresa) any { return e.Email }, Fold: true},
		},
		Guards: []domain.ChildGuard{
			{
				Kind:     "filial",
				Column:   "empresa_id",
				Children: filiais,
				Describe: func(n int) string { return fmt.Sprintf("%d filial(is) ativa(s)", n) },
			},
		},
	})

	return &Service{HierarchyService: base}
}
