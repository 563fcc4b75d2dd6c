package notify

import (
	"time"

	"go.uber.org/zap"
)

// Coordinator owns the lifecycle of transfer notifications
type Coordinator struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewCoordinator creates a coordinator writing into store
func NewCoordinator(store Store, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{store: store, logger: logger, now: time.Now}
}

// Announce shows an ongoing, indeterminate progress notification for refID.
// It replaces any notification with the same id.
func (c *Coordinator) Announce(refID, fileName string) Notification {
	n := Notification{
		ID:            IDFor(refID),
		RefID:         refID,
		Title:         Title,
		Text:          fileName,
		Ongoing:       true,
		Indeterminate: true,
		UpdatedAt:     c.now(),
	}
	c.store.Put(n)

	c.logger.Debug("Transfer notification announced", zap.String("ref_id", refID), zap.Uint32("notification_id", n.ID))
	return n
}

// Finish replaces the notification of refID with a dismissable completion
// notification. A prior Announce is not required.
func (c *Coordinator) Finish(refID, text string, action OpenAction) Notification {
	n := Notification{
		ID:         IDFor(refID),
		RefID:      refID,
		Title:      Title,
		Text:       text,
		AutoCancel: true,
		Action:     &action,
		UpdatedAt:  c.now(),
	}
	c.store.Put(n)

	c.logger.Debug("Transfer notification finished", zap.String("ref_id", refID), zap.String("path", action.Path))
	return n
}
