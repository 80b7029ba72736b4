package domain

import (
	"context"

	appctx "warebase/internal/core/context"
	"warebase/internal/domain/audit"
)

// AttachAuditHooks wires the audit recorder into an entity's lifecycle so
// every catalog mutation is recorded without per-call-site discipline.
// Failures inside audit.Try are logged, never propagated, so hooks always
// return nil.
func AttachAuditHooks[T any](hooks *HookRegistry[T], rec audit.Recorder, entityName string, entityID func(T) string) {
	hooks.OnAfterCreate(func(ctx context.Context, e T) error {
		audit.Try(ctx, rec, audit.Entry{
			Entity:       entityName,
			EntityID:     entityID(e),
			Action:       audit.ActionCreated,
			PayloadAfter: e,
			PerformedBy:  appctx.GetUserID(ctx),
		})
		return nil
	})
	hooks.OnAfterUpdate(func(ctx context.Context, e T) error {
		audit.Try(ctx, rec, audit.Entry{
			Entity:       entityName,
			EntityID:     entityID(e),
			Action:       audit.ActionUpdated,
			PayloadAfter: e,
			PerformedBy:  appctx.GetUserID(ctx),
		})
		return nil
	})
	hooks.OnAfterDelete(func(ctx context.Context, e T) error {
		audit.Try(ctx, rec, audit.Entry{
			Entity:        entityName,
			EntityID:      entityID(e),
			Action:        audit.ActionDeleted,
			PayloadBefore: e,
			PerformedBy:   appctx.GetUserID(ctx),
		})
		return nil
	})
}
