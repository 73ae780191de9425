// Package hooks provides the hook interface for handling template check events.
package hooks

import (
	"context"
)

// Hooks defines the interface for handling template check events.
// Implement this interface to receive notifications when checks complete.
type Hooks interface {
	// OnTemplateChecked is called when a template check completes.
	OnTemplateChecked(ctx context.Context, e TemplateCheckedEvent) error

	// OnCategoryMismatch is called when detected intent contradicts the
	// declared category.
	OnCategoryMismatch(ctx context.Context, e CategoryMismatchEvent) error

	// OnContentFlagged is called when a safety checker flags content.
	OnContentFlagged(ctx context.Context, e ContentFlaggedEvent) error

	// OnReviewRequired is called when human review is needed.
	OnReviewRequired(ctx context.Context, e ReviewRequiredEvent) error
}

// NopHooks is a no-op implementation of Hooks.
type NopHooks struct{}

// OnTemplateChecked does nothing.
func (NopHooks) OnTemplateChecked(ctx context.Context, e TemplateCheckedEvent) error {
	return nil
}

// OnCategoryMismatch does nothing.
func (NopHooks) OnCategoryMismatch(ctx context.Context, e CategoryMismatchEvent) error {
	return nil
}

// OnContentFlagged does nothing.
func (NopHooks) OnContentFlagged(ctx context.Context, e ContentFlaggedEvent) error {
	return nil
}

// OnReviewRequired does nothing.
func (NopHooks) OnReviewRequired(ctx context.Context, e ReviewRequiredEvent) error {
	return nil
}

// Ensure NopHooks implements Hooks.
var _ Hooks = NopHooks{}

// ChainHooks chains multiple Hooks implementations.
type ChainHooks []Hooks

// OnTemplateChecked calls all hooks in order.
func (ch ChainHooks) OnTemplateChecked(ctx context.Context, e TemplateCheckedEvent) error {
	for _, h := range ch {
		if err := h.OnTemplateChecked(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// OnCategoryMismatch calls all hooks in order.
func (ch ChainHooks) OnCategoryMismatch(ctx context.Context, e CategoryMismatchEvent) error {
	for _, h := range ch {
		if err := h.OnCategoryMismatch(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// OnContentFlagged calls all hooks in order.
func (ch ChainHooks) OnContentFlagged(ctx context.Context, e ContentFlaggedEvent) error {
	for _, h := range ch {
		if err := h.OnContentFlagged(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// OnReviewRequired calls all hooks in order.
func (ch ChainHooks) OnReviewRequired(ctx context.Context, e ReviewRequiredEvent) error {
	for _, h := range ch {
		if err := h.OnReviewRequired(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// FuncHooks allows using functions as hooks.
type FuncHooks struct {
	OnTemplateCheckedFunc  func(ctx context.Context, e TemplateCheckedEvent) error
	OnCategoryMismatchFunc func(ctx context.Context, e CategoryMismatchEvent) error
	OnContentFlaggedFunc   func(ctx context.Context, e ContentFlaggedEvent) error
	OnReviewRequiredFunc   func(ctx context.Context, e ReviewRequiredEvent) error
}

// OnTemplateChecked calls the function if set.
func (fh FuncHooks) OnTemplateChecked(ctx context.Context, e TemplateCheckedEvent) error {
	if fh.OnTemplateCheckedFunc != nil {
		return fh.OnTemplateCheckedFunc(ctx, e)
	}
	return nil
}

// OnCategoryMismatch calls the function if set.
func (fh FuncHooks) OnCategoryMismatch(ctx context.Context, e CategoryMismatchEvent) error {
	if fh.OnCategoryMismatchFunc != nil {
		return fh.OnCategoryMismatchFunc(ctx, e)
	}
	return nil
}

// OnContentFlagged calls the function if set.
func (fh FuncHooks) OnContentFlagged(ctx context.Context, e ContentFlaggedEvent) error {
	if fh.OnContentFlaggedFunc != nil {
		return fh.OnContentFlaggedFunc(ctx, e)
	}
	return nil
}

// OnReviewRequired calls the function if set.
func (fh FuncHooks) OnReviewRequired(ctx context.Context, e ReviewRequiredEvent) error {
	if fh.OnReviewRequiredFunc != nil {
		return fh.OnReviewRequiredFunc(ctx, e)
	}
	return nil
}
