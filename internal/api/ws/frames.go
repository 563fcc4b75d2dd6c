package ws

import (
	"github.com/GriffinCanCode/Datash/backend/internal/domain/notify"
)

// Frame types
const (
	TypeCall         = "call"
	TypeSystem       = "system"
	TypeEvaluate     = "evaluate"
	TypeToast        = "toast"
	TypeNotification = "notification"
	TypePong         = "pong"
	TypeError        = "error"
)

// Frame is one WebSocket message in either direction
type Frame struct {
	Type         string               `json:"type"`
	Method       string               `json:"method,omitempty"`
	Args         []string             `json:"args,omitempty"`
	Script       string               `json:"script,omitempty"`
	Message      string               `json:"message,omitempty"`
	Sticky       bool                 `json:"sticky,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Timestamp    int64                `json:"timestamp,omitempty"`
}
