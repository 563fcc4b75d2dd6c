package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Opener hands a URL or path to the host's file-opening mechanism
type Opener interface {
	Open(ctx context.Context, target string) error
}

// Activator handles a user activating a completion notification
type Activator struct {
	store   Store
	grants  *Grants
	opener  Opener
	baseURL string
	logger  *zap.Logger
}

// NewActivator creates an activator. Grant URLs are built as baseURL/files/<token>.
func NewActivator(store Store, grants *Grants, opener Opener, baseURL string, logger *zap.Logger) *Activator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activator{
		store:   store,
		grants:  grants,
		opener:  opener,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Activate issues a grant for the notification's file and opens it
func (a *Activator) Activate(ctx context.Context, id uint32) (Grant, string, error) {
	n, ok := a.store.Get(id)
	if !ok {
		return Grant{}, "", fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if n.Action == nil {
		return Grant{}, "", fmt.Errorf("%w: %d", ErrNoAction, id)
	}

	grant := a.grants.Issue(*n.Action)
	url := a.GrantURL(grant)

	if err := a.opener.Open(ctx, url); err != nil {
		a.logger.Warn("Failed to open granted file", zap.Uint32("notification_id", id), zap.Error(err))
		return grant, url, fmt.Errorf("failed to open %s: %w", n.Action.FileName, err)
	}

	a.logger.Info("Opened downloaded file",
		zap.Uint32("notification_id", id),
		zap.String("ref_id", n.RefID),
		zap.String("mime_type", grant.MIMEType))
	return grant, url, nil
}

// GrantURL returns the URL serving grant
func (a *Activator) GrantURL(grant Grant) string {
	return a.baseURL + "/files/" + grant.Token
}
