package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultGrantTTL bounds how long a grant URL stays valid
const DefaultGrantTTL = 5 * time.Minute

// Grant gives read-only access to exactly one written file
type Grant struct {
	Token     string    `json:"token"`
	Path      string    `json:"-"`
	FileName  string    `json:"fileName"`
	MIMEType  string    `json:"mimeType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Grants issues and resolves file grants
type Grants struct {
	mu    sync.Mutex
	items map[string]Grant
	ttl   time.Duration
	now   func() time.Time
}

// NewGrants creates a grant table. ttl <= 0 means DefaultGrantTTL.
func NewGrants(ttl time.Duration) *Grants {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &Grants{
		items: make(map[string]Grant),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Issue creates a grant for action's file
func (g *Grants) Issue(action OpenAction) Grant {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.pruneLocked(now)

	grant := Grant{
		Token:     uuid.NewString(),
		Path:      action.Path,
		FileName:  action.FileName,
		MIMEType:  action.MIMEType,
		ExpiresAt: now.Add(g.ttl),
	}
	g.items[grant.Token] = grant
	return grant
}

// Lookup resolves a live grant
func (g *Grants) Lookup(token string) (Grant, error) {
	if _, err := uuid.Parse(token); err != nil {
		return Grant{}, ErrGrantNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	grant, ok := g.items[token]
	if !ok {
		return Grant{}, ErrGrantNotFound
	}
	if !g.now().Before(grant.ExpiresAt) {
		delete(g.items, token)
		return Grant{}, ErrGrantNotFound
	}
	return grant, nil
}

func (g *Grants) pruneLocked(now time.Time) {
	for token, grant := range g.items {
		if !now.Before(grant.ExpiresAt) {
			delete(g.items, token)
		}
	}
}
