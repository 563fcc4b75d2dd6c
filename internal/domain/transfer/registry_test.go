package transfer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteUnknownTransfer(t *testing.T) {
	r := NewRegistry(0)

	_, err := r.Complete("X")
	assert.ErrorIs(t, err, ErrUnknownTransfer)
}

func TestBeginThenComplete(t *testing.T) {
	r := NewRegistry(0)
	r.Begin("r1", "peerA", "photo.png", 12345, "image/png")
	assert.Equal(t, 1, r.Len())

	rec, err := r.Complete("r1")
	require.NoError(t, err)
	assert.Equal(t, "peerA", rec.SourceID)
	assert.Equal(t, "photo.png", rec.FileName)
	assert.Equal(t, int64(12345), rec.SizeBytes)
	assert.Equal(t, "image/png", rec.MIMEType)
	assert.Equal(t, StateCompleted, rec.State)
	assert.Equal(t, 0, r.Len())

	_, err = r.Complete("r1")
	assert.ErrorIs(t, err, ErrUnknownTransfer, "a record is consumed by its completion")
}

func TestBeginOverwrites(t *testing.T) {
	r := NewRegistry(0)
	r.Begin("X", "peerA", "first.txt", 1, "text/plain")
	r.Begin("X", "peerB", "second.pdf", 2, "application/pdf")
	assert.Equal(t, 1, r.Len())

	rec, err := r.Complete("X")
	require.NoError(t, err)
	assert.Equal(t, "peerB", rec.SourceID)
	assert.Equal(t, "second.pdf", rec.FileName)
	assert.Equal(t, int64(2), rec.SizeBytes)
}

func TestExpire(t *testing.T) {
	r := NewRegistry(time.Minute)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return base }
	r.Begin("old", "p", "old.txt", 1, "text/plain")
	r.now = func() time.Time { return base.Add(45 * time.Second) }
	r.Begin("new", "p", "new.txt", 1, "text/plain")

	expired := r.Expire(base.Add(time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].RefID)
	assert.Equal(t, StateFailed, expired[0].State)

	_, err := r.Complete("old")
	assert.ErrorIs(t, err, ErrUnknownTransfer)

	_, err = r.Complete("new")
	assert.NoError(t, err)
}

func TestExpireDisabled(t *testing.T) {
	r := NewRegistry(0)
	r.Begin("a", "p", "a.txt", 1, "text/plain")

	assert.Empty(t, r.Expire(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, r.Len())
}

func TestConcurrentBeginComplete(t *testing.T) {
	r := NewRegistry(0)

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Begin(fmt.Sprintf("ref-%d", i), "p", "f.bin", int64(i), "application/octet-stream")
		}(i)
	}
	wg.Wait()

	var completed sync.Map
	var failures int32
	var mu sync.Mutex
	for i := 0; i < n; i++ {
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec, err := r.Complete(fmt.Sprintf("ref-%d", i))
				if err != nil {
					mu.Lock()
					failures++
					mu.Unlock()
					return
				}
				_, dup := completed.LoadOrStore(rec.RefID, true)
				assert.False(t, dup, "record %s completed twice", rec.RefID)
			}(i)
		}
	}
	wg.Wait()

	assert.Equal(t, int32(n), failures)
	assert.Equal(t, 0, r.Len())
}
