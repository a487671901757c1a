// Package usersink forwards document activity to a go-users activity sink.
package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-jsonio/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// TenantMetadataKey names the event metadata entry mapped to the record tenant.
const TenantMetadataKey = "tenant_id"

// PathDataKey names the record data entry holding the document path.
const PathDataKey = "path"

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// The event actor is recorded as both actor and user, a UUID operation id
// becomes the record id, and the document path is kept in the record data.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	actor := parseUUID(normalized.ActorID)
	record := usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     actor,
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       cloneMap(normalized.Metadata),
		OccurredAt: normalized.OccurredAt,
	}
	record.ID = parseUUID(normalized.OperationID)
	if normalized.Path != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data[PathDataKey] = normalized.Path
	}
	if tenant, ok := normalized.Metadata[TenantMetadataKey].(string); ok {
		record.TenantID = parseUUID(tenant)
		delete(record.Data, TenantMetadataKey)
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}

	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	value := strings.TrimSpace(input)
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
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
