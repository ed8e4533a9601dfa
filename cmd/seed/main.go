// Package main provides a CLI tool for seeding the database with a demo hierarchy
// and printing a development access token.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	appctx "retaguarda/internal/core/context"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/auth"
	"retaguarda/internal/domain/catalogs"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/categoria"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/empresa"
	"retaguarda/internal/domain/catalogs/filial"
	"retaguarda/internal/domain/catalogs/produto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
	"retaguarda/internal/domain/filter"
	"retaguarda/internal/infrastructure/config"
	"retaguarda/internal/infrastructure/storage/postgres"
	"retaguarda/internal/infrastructure/storage/postgres/catalog_repo"
	"retaguarda/pkg/logger"
)

const demoCodigo = "DEMO"

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	tokenOnly := flag.Bool("token-only", false, "only print a development token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	if !*tokenOnly {
		if cfg.Storage.Driver != config.DriverPostgres {
			log.Fatalw("seeding requires the postgres driver", "driver", cfg.Storage.Driver)
		}

		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN))
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		log.Info("connected to database")

		txm := postgres.NewTxManager(pool, cfg.Database.StatementTimeout)
		services := catalogs.NewServices(catalog_repo.NewRepos(txm), txm, catalogs.Options{})

		if err := seedDemo(ctx, services, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	if cfg.JWT.Secret == "" {
		log.Warn("jwt.secret is empty: no token printed")
		return
	}

	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtConfig.AccessTokenTTL = cfg.JWT.TTL
	token, expiresAt, err := auth.NewJWTService(jwtConfig).GenerateAccessToken(appctx.UserContext{
		UserID:  "seed-admin",
		Email:   "admin@retaguarda.local",
		IsAdmin: true,
	})
	if err != nil {
		log.Fatalw("failed to sign token", "error", err)
	}

	fmt.Printf("\nDevelopment token (expires %s):\n%s\n", expiresAt.Format("2006-01-02 15:04:05"), token)
}

// seedDemo creates one complete branch of the hierarchy. It is a no-op when the demo empresa exists.
func seedDemo(ctx context.Context, s *catalogs.Services, log *logger.Logger) error {
	existing, err := s.Empresa.List(ctx, domain.ListFilter{
		AdvancedFilters: []filter.Item{filter.Eq("codigo", demoCodigo)},
		Limit:           1,
	})
	if err != nil {
		return err
	}
	if len(existing.Items) > 0 {
		log.Infow("demo data already present", "empresa_id", existing.Items[0].ID)
		return nil
	}

	emp, err := s.Empresa.Create(ctx, empresa.NewEmpresa(demoCodigo, "Restaurante Demonstração", "12.345.678/0001-90", "contato@demo.local", entity.Endereco{
		Logradouro: "Rua Augusta",
		Numero:     "1500",
		Cep:        "01304-001",
		Bairro:     "Consolação",
		Cidade:     "São Paulo",
		Uf:         "SP",
	}))
	if err != nil {
		return fmt.Errorf("empresa: %w", err)
	}

	fil, err := s.Filial.Create(ctx, filial.NewFilial(emp.ID, "MTZ", "Matriz Paulista", true))
	if err != nil {
		return fmt.Errorf("filial: %w", err)
	}

	agr, err := s.Agrupamento.Create(ctx, agrupamento.NewAgrupamento(fil.ID, "ALB", "Alimentos e Bebidas", nil))
	if err != nil {
		return fmt.Errorf("agrupamento: %w", err)
	}

	sub, err := s.SubAgrupamento.Create(ctx, subagrupamento.NewSubAgrupamento(agr.ID, "BAR", "Bar", nil))
	if err != nil {
		return fmt.Errorf("sub-agrupamento: %w", err)
	}

	cc, err := s.CentroCusto.Create(ctx, centrocusto.NewCentroCusto(sub.ID, "BAR01", "Bar do Salão", nil))
	if err != nil {
		return fmt.Errorf("centro de custo: %w", err)
	}

	var pai *categoria.Categoria
	for nivel, nome := range []string{"Bebidas", "Alcoólicas", "Chopes"} {
		c := categoria.NewCategoria(cc.ID, nil, nivel+1, fmt.Sprintf("CAT%d", nivel+1), nome, nil)
		if pai != nil {
			c.CategoriaPaiID = &pai.ID
		}
		if pai, err = s.Categoria.Create(ctx, c); err != nil {
			return fmt.Errorf("categoria %s: %w", nome, err)
		}
	}

	chopp, err := s.Produto.Create(ctx, produto.NewProduto(pai.ID, "CHP300", "Chopp Pilsen 300ml", decimal.RequireFromString("12.90"), true, false))
	if err != nil {
		return fmt.Errorf("produto: %w", err)
	}
	barril, err := s.Produto.Create(ctx, produto.NewProduto(pai.ID, "BRL50", "Barril Pilsen 50L", decimal.RequireFromString("650.00"), false, true))
	if err != nil {
		return fmt.Errorf("produto: %w", err)
	}

	litro := "L"
	if _, err := s.Ficha.Add(ctx, chopp.ID, barril.ID, decimal.RequireFromString("0.3"), &litro); err != nil {
		return fmt.Errorf("ficha técnica: %w", err)
	}

	log.Infow("demo hierarchy created", "empresa_id", emp.ID, "centro_custo_id", cc.ID, "produto_id", chopp.ID)
	return nil
}
