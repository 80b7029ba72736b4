package warehouse

import (
	"context"
	"fmt"
	"time"

	"warebase/internal/core/numerator"
	"warebase/internal/core/tx"
	"warebase/internal/domain"
	"warebase/internal/domain/audit"
)

// Service provides business logic for the Warehouse catalog.
// Composes domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Warehouse]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Warehouse service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator, auditor audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "Warehouse",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	domain.AttachAuditHooks(base.Hooks(), auditor, "Warehouse", func(w *Warehouse) string { return w.ID.String() })

	return svc
}

// prepareForCreate generates a code when none is provided.
func (s *Service) prepareForCreate(ctx context.Context, w *Warehouse) error {
	if w.Code == "" {
		cfg := numerator.Config{Prefix: "WH", PadWidth: 4, ResetPeriod: numerator.ResetNever}
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		w.Code = code
	}
	return nil
}
