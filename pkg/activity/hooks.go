// Package activity fans out document lifecycle events (saves, loads and
// section removals) to pluggable hooks.
package activity

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Event describes one document operation. ObjectID is the section's root key
// and Path the document it lives in.
type Event struct {
	Verb        string
	ActorID     string
	ObjectType  string
	ObjectID    string
	Channel     string
	Path        string
	OperationID string
	Metadata    map[string]any
	OccurredAt  time.Time
}

// Section returns "path#root_key", or whichever half is set.
func (e Event) Section() string {
	switch {
	case e.Path == "":
		return e.ObjectID
	case e.ObjectID == "" || e.ObjectID == e.Path:
		return e.Path
	default:
		return e.Path + "#" + e.ObjectID
	}
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to every hook and joins their errors, each
// labelled with the verb and section it failed on. Events without a verb,
// object type or object id are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, fmt.Errorf("activity: %s %s: %w", normalized.Verb, normalized.Section(), err))
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, cleans the document path, clones metadata
// and stamps a timestamp when none is set.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.OperationID = strings.TrimSpace(event.OperationID)
	if path := strings.TrimSpace(event.Path); path != "" {
		normalized.Path = filepath.Clean(path)
	}
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
