package product

import (
	"context"
	"fmt"
	"time"

	"warebase/internal/core/numerator"
	"warebase/internal/core/tx"
	"warebase/internal/domain"
	"warebase/internal/domain/audit"
)

// Service provides business logic for the Product catalog.
// Composes domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator, auditor audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "Product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	domain.AttachAuditHooks(base.Hooks(), auditor, "Product", func(p *Product) string { return p.ID.String() })

	return svc
}

// prepareForCreate generates a SKU when none is provided.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		cfg := numerator.Config{Prefix: "SKU", PadWidth: 6, ResetPeriod: numerator.ResetNever}
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate sku: %w", err)
		}
		p.Code = code
	}
	return nil
}
