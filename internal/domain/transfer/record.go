package transfer

import (
	"errors"
	"time"
)

// ErrUnknownTransfer is returned when a completion has no announced record.
var ErrUnknownTransfer = errors.New("unknown transfer")

// State represents a transfer's position in its lifecycle
type State string

const (
	StateAnnounced State = "announced"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Record describes one inbound transfer
type Record struct {
	RefID       string    `json:"ref_id"`
	SourceID    string    `json:"source_id"`
	FileName    string    `json:"file_name"`
	SizeBytes   int64     `json:"size_bytes"`
	MIMEType    string    `json:"mime_type"`
	State       State     `json:"state"`
	AnnouncedAt time.Time `json:"announced_at"`
}
