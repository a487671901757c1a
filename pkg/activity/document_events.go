package activity

import (
	"strings"
	"time"
)

// Verbs emitted for document operations.
const (
	VerbDocumentSaved  = "document.saved"
	VerbDocumentLoaded = "document.loaded"
	VerbSectionRemoved = "document.section.removed"
)

// ObjectTypeSection is the object type of every document event; the object
// id is the section's root key.
const ObjectTypeSection = "document.section"

// DocumentEventInput describes the common fields for document events.
type DocumentEventInput struct {
	OperationID string
	ActorID     string
	Channel     string
	Path        string
	RootKey     string
	Status      string
	Mismatches  int
	Preserved   []string
	Discarded   bool
	Metadata    map[string]any
	OccurredAt  time.Time
}

// BuildDocumentSavedEvent describes a section written to a document.
func BuildDocumentSavedEvent(input DocumentEventInput) Event {
	event := buildDocumentEvent(VerbDocumentSaved, input)
	if len(input.Preserved) > 0 {
		event.Metadata["preserved_sections"] = append([]string{}, input.Preserved...)
	}
	if input.Discarded {
		event.Metadata["discarded_corrupt_document"] = true
	}
	return event
}

// BuildDocumentLoadedEvent describes a load attempt and its outcome.
func BuildDocumentLoadedEvent(input DocumentEventInput) Event {
	event := buildDocumentEvent(VerbDocumentLoaded, input)
	event.Metadata["mismatches"] = input.Mismatches
	return event
}

// BuildSectionRemovedEvent describes a section deleted from a document.
func BuildSectionRemovedEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbSectionRemoved, input)
}

func buildDocumentEvent(verb string, input DocumentEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if input.Path != "" {
		metadata["path"] = input.Path
	}
	if input.OperationID != "" {
		metadata["operation_id"] = input.OperationID
	}
	if input.Status != "" {
		metadata["status"] = input.Status
	}

	objectID := strings.TrimSpace(input.RootKey)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Path)
	}
	if objectID == "" {
		objectID = ObjectTypeSection
	}

	return Event{
		Verb:        verb,
		ActorID:     strings.TrimSpace(input.ActorID),
		ObjectType:  ObjectTypeSection,
		ObjectID:    objectID,
		Channel:     strings.TrimSpace(input.Channel),
		Path:        strings.TrimSpace(input.Path),
		OperationID: strings.TrimSpace(input.OperationID),
		Metadata:    metadata,
		OccurredAt:  input.OccurredAt,
	}
}
