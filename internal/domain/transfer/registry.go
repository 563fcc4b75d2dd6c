package transfer

import (
	"fmt"
	"sync"
	"time"
)

// Registry holds announced transfers keyed by refId
type Registry struct {
	mu      sync.Mutex
	records map[string]Record // Protected by mu
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry creates a registry. A zero ttl keeps announced records until
// they are completed.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		records: make(map[string]Record),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Begin records an announced transfer, replacing any record with the same refId
func (r *Registry) Begin(refID, sourceID, fileName string, sizeBytes int64, mimeType string) Record {
	rec := Record{
		RefID:       refID,
		SourceID:    sourceID,
		FileName:    fileName,
		SizeBytes:   sizeBytes,
		MIMEType:    mimeType,
		State:       StateAnnounced,
		AnnouncedAt: r.now(),
	}

	r.mu.Lock()
	r.records[refID] = rec
	r.mu.Unlock()

	return rec
}

// Complete removes and returns the record for refID
func (r *Registry) Complete(refID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[refID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownTransfer, refID)
	}
	delete(r.records, refID)

	rec.State = StateCompleted
	return rec, nil
}

// Expire removes announced records older than the registry TTL and returns
// them marked as failed.
func (r *Registry) Expire(now time.Time) []Record {
	if r.ttl <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []Record
	for refID, rec := range r.records {
		if now.Sub(rec.AnnouncedAt) >= r.ttl {
			delete(r.records, refID)
			rec.State = StateFailed
			expired = append(expired, rec)
		}
	}
	return expired
}

// Len returns the number of announced transfers awaiting completion
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// TTL returns the expiry window for announced records
func (r *Registry) TTL() time.Duration {
	return r.ttl
}
