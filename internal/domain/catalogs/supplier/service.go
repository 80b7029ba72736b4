package supplier

import (
	"context"
	"fmt"
	"time"

	"warebase/internal/core/numerator"
	"warebase/internal/core/tx"
	"warebase/internal/domain"
	"warebase/internal/domain/audit"
)

// Service provides business logic for the Supplier catalog.
// Composes domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator, auditor audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "Supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	domain.AttachAuditHooks(base.Hooks(), auditor, "Supplier", func(sp *Supplier) string { return sp.ID.String() })

	return svc
}

// prepareForCreate generates a code when none is provided.
func (s *Service) prepareForCreate(ctx context.Context, sp *Supplier) error {
	if sp.Code == "" {
		cfg := numerator.Config{Prefix: "SUP", PadWidth: 4, ResetPeriod: numerator.ResetNever}
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		sp.Code = code
	}
	return nil
}
