package notify

import (
	"errors"
	"time"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrNotFound      = errors.New("notification not found")
	ErrNoAction      = errors.New("notification has no open action")
	ErrGrantNotFound = errors.New("grant not found or expired")
)

// Title of every transfer notification
const Title = "File Download"

// OpenAction opens a written file with its declared content type
type OpenAction struct {
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	MIMEType string `json:"mimeType"`
}

// Notification is one host-visible transfer notification
type Notification struct {
	ID            uint32      `json:"id"`
	RefID         string      `json:"refId"`
	Title         string      `json:"title"`
	Text          string      `json:"text"`
	Ongoing       bool        `json:"ongoing"`
	Indeterminate bool        `json:"indeterminate"`
	AutoCancel    bool        `json:"autoCancel"`
	Action        *OpenAction `json:"action,omitempty"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IDFor derives the notification id of a transfer
func IDFor(refID string) uint32 {
	return uint32(xxhash.Sum64String(refID))
}

// Expired is the dismissable record left when a transfer never completed
func Expired(refID, fileName string, at time.Time) Notification {
	return Notification{
		ID:         IDFor(refID),
		RefID:      refID,
		Title:      Title,
		Text:       "Download expired: " + fileName,
		AutoCancel: true,
		UpdatedAt:  at,
	}
}
