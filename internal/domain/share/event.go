package share

import (
	"errors"

	"github.com/GriffinCanCode/Datash/backend/internal/shared/id"
)

// ErrContentUnavailable is reported when a share carries nothing deliverable
var ErrContentUnavailable = errors.New("share content unavailable")

// Kind is the shape of a share request
type Kind string

const (
	KindText  Kind = "text"
	KindFile  Kind = "file"
	KindFiles Kind = "files"
)

// Event is one host share request. It is ingested exactly once.
type Event struct {
	ID        id.ShareID `json:"id"`
	Kind      Kind       `json:"kind"`
	Text      *string    `json:"text,omitempty"`
	Resources []string   `json:"resources,omitempty"`
}

// NewTextEvent creates a text share
func NewTextEvent(text string) Event {
	return Event{ID: id.NewShareID(), Kind: KindText, Text: &text}
}

// NewFilesEvent creates a file share. One reference is a single-file share,
// anything else a multi-file share.
func NewFilesEvent(refs ...string) Event {
	kind := KindFiles
	if len(refs) == 1 {
		kind = KindFile
	}
	return Event{ID: id.NewShareID(), Kind: kind, Resources: refs}
}
