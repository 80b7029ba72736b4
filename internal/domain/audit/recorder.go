// Package audit defines the audit trail contract consumed by workflow and
// catalog services. The storage implementation lives in infrastructure.
package audit

import (
	"context"

	"warebase/pkg/logger"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionDeleted   Action = "deleted"
	ActionApproved  Action = "approved"
	ActionReceived  Action = "received"
	ActionConfirmed Action = "confirmed"
	ActionFulfilled Action = "fulfilled"
	ActionCancelled Action = "cancelled"
	ActionAdjusted  Action = "adjusted"
	ActionTransfer  Action = "transferred"
)

// Entry is one audit record: who did what to which entity, with optional
// before/after snapshots.
type Entry struct {
	Entity        string
	EntityID      string
	Action        Action
	PayloadBefore any
	PayloadAfter  any
	PerformedBy   string
}

// Recorder is the audit sink. Record must be attempted for every
// state-changing operation; implementations persist entries append-only.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Try records an entry and downgrades any failure to a warning log.
// Audit failures never surface as user-facing errors; routing every call
// through this helper keeps that policy in one place.
func Try(ctx context.Context, rec Recorder, entry Entry) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record failed",
			"entity", entry.Entity,
			"entity_id", entry.EntityID,
			"action", string(entry.Action),
			"error", err,
		)
	}
}

// NopRecorder discards entries. Use in tests or when auditing is disabled.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(ctx context.Context, entry Entry) error { return nil }

var _ Recorder = NopRecorder{}
