// Package store provides the data storage interface for template checks.
package store

import (
	"context"
	"time"

	waguard "github.com/sociovia/waguard"
)

// Store defines the interface for template check storage.
type Store interface {
	// TemplateCheck operations
	CreateCheck(ctx context.Context, tpl waguard.TemplateContext, contentHash string) (checkID string, err error)
	GetCheck(ctx context.Context, checkID string) (*waguard.TemplateCheck, error)
	UpdateCheckOutcome(ctx context.Context, checkID string, outcome waguard.CheckOutcome) error
	UpdateCheckStatus(ctx context.Context, checkID string, status waguard.CheckStatus) error

	// CheckerTask operations
	CreateCheckerTask(ctx context.Context, checkID, checker, mode, remoteTaskID string, raw map[string]any) (taskID string, err error)
	GetCheckerTask(ctx context.Context, taskID string) (*waguard.CheckerTask, error)
	GetCheckerTaskByRemoteID(ctx context.Context, checker, remoteTaskID string) (*waguard.CheckerTask, error)
	UpdateCheckerTaskResult(ctx context.Context, taskID string, done bool, result *waguard.SafetyResult, raw map[string]any) error
	ListCheckerTasks(ctx context.Context, checkID string) ([]waguard.CheckerTask, error)
	ListPendingAsyncTasks(ctx context.Context, checker string, limit int) ([]waguard.PendingTask, error)

	// TemplateBinding operations (current state per template name + language)
	GetBinding(ctx context.Context, templateName, language string) (*waguard.TemplateBinding, error)
	UpsertBinding(ctx context.Context, binding waguard.TemplateBinding) error
	ListBindingsByTemplate(ctx context.Context, templateName string) ([]waguard.TemplateBinding, error)

	// TemplateBindingHistory operations (historical state)
	CreateBindingHistory(ctx context.Context, history waguard.TemplateBindingHistory) error
	ListBindingHistory(ctx context.Context, templateName, language string, limit int) ([]waguard.TemplateBindingHistory, error)

	// ViolationSnapshot operations
	SaveViolationSnapshot(ctx context.Context, tpl waguard.TemplateContext, contentHash, bodyText string, outcome waguard.CheckOutcome) (snapshotID string, err error)
	GetViolationSnapshot(ctx context.Context, snapshotID string) (*waguard.ViolationSnapshot, error)
	ListViolationsByTemplate(ctx context.Context, templateName string, limit int) ([]waguard.ViolationSnapshot, error)

	// Utility
	Now() time.Time

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// QueryOptions provides common query options.
type QueryOptions struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// BindingChange represents a change in binding state.
type BindingChange struct {
	Old *waguard.TemplateBinding
	New waguard.TemplateBinding
}

// HasChanged checks if the binding state has changed.
func (c BindingChange) HasChanged() bool {
	if c.Old == nil {
		return true
	}
	return c.Old.Gate != c.New.Gate ||
		c.Old.ContentHash != c.New.ContentHash ||
		c.Old.ViolationRefID != c.New.ViolationRefID
}
