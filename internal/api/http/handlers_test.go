package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Datash/backend/internal/domain/notify"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/share"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingSharer struct {
	mu     sync.Mutex
	events []share.Event
}

func (s *recordingSharer) Share(ev share.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

type staticReadiness bool

func (r staticReadiness) Ready() bool { return bool(r) }

type staticPending int

func (p staticPending) Len() int { return int(p) }

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) Open(ctx context.Context, target string) error {
	return m.Called(ctx, target).Error(0)
}

type fixture struct {
	router *gin.Engine
	sharer *recordingSharer
	store  *notify.MemoryStore
	coord  *notify.Coordinator
	grants *notify.Grants
	opener *mockOpener
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := notify.NewMemoryStore()
	grants := notify.NewGrants(time.Minute)
	opener := new(mockOpener)
	sharer := &recordingSharer{}

	h := NewHandlers(Deps{
		Sharer:    sharer,
		Readiness: staticReadiness(true),
		Pending:   staticPending(2),
		Store:     store,
		Activator: notify.NewActivator(store, grants, opener, "http://localhost:8000", nil),
		Grants:    grants,
	})

	router := gin.New()
	h.Register(router)

	return &fixture{
		router: router,
		sharer: sharer,
		store:  store,
		coord:  notify.NewCoordinator(store, nil),
		grants: grants,
		opener: opener,
	}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do("GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, w)["status"])

	w = f.do("GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["surface_ready"])
	assert.EqualValues(t, 2, body["transfers_pending"])
}

func TestSubmitShare(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKind share.Kind
	}{
		{"text", `{"text":"hello"}`, http.StatusAccepted, share.KindText},
		{"empty text is still text", `{"text":""}`, http.StatusAccepted, share.KindText},
		{"single file", `{"files":["/tmp/a.txt"]}`, http.StatusAccepted, share.KindFile},
		{"multiple files", `{"files":["/tmp/a.txt","/tmp/b.png"]}`, http.StatusAccepted, share.KindFiles},
		{"nothing", `{}`, http.StatusBadRequest, ""},
		{"both", `{"text":"x","files":["/tmp/a"]}`, http.StatusBadRequest, ""},
		{"blank file", `{"files":[""]}`, http.StatusBadRequest, ""},
		{"malformed", `{"files":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do("POST", "/shares", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())

			if tt.wantCode != http.StatusAccepted {
				assert.Empty(t, f.sharer.events)
				assert.Contains(t, decode(t, w), "error")
				return
			}
			require.Len(t, f.sharer.events, 1)
			ev := f.sharer.events[0]
			assert.Equal(t, tt.wantKind, ev.Kind)
			assert.Equal(t, ev.ID.String(), decode(t, w)["id"])
		})
	}
}

func TestListNotifications(t *testing.T) {
	f := newFixture(t)
	f.coord.Announce("r1", "a.txt")
	f.coord.Announce("r2", "b.txt")

	w := f.do("GET", "/notifications", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["count"])
}

func TestOpenNotificationAndServeFile(t *testing.T) {
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "photo.png")
	content := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, os.WriteFile(path, content, 0o644))

	n := f.coord.Finish("r1", "Download complete: photo.png", notify.OpenAction{
		Path:     path,
		FileName: "photo.png",
		MIMEType: "image/png",
	})
	f.opener.On("Open", mock.Anything, mock.Anything).Return(nil)

	w := f.do("POST", fmt.Sprintf("/notifications/%d/open", n.ID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "http://localhost:8000/files/"+token, body["url"])
	f.opener.AssertExpectations(t)

	w = f.do("GET", "/files/"+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, content, w.Body.Bytes())

	// grants are read-only
	w = f.do("POST", "/files/"+token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenNotificationErrors(t *testing.T) {
	f := newFixture(t)
	pending := f.coord.Announce("r1", "a.txt")

	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/notifications/abc/open", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/notifications/99999999999/open", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do("POST", "/notifications/7/open", "").Code)
	assert.Equal(t, http.StatusConflict, f.do("POST", fmt.Sprintf("/notifications/%d/open", pending.ID), "").Code)
}

func TestServeFileUnknownToken(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNotFound, f.do("GET", "/files/not-a-token", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/files/7d444840-9dc0-11d1-b245-5ffdce74fad2", "").Code)
}

func TestServeFileRemovedAfterGrant(t *testing.T) {
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	grant := f.grants.Issue(notify.OpenAction{Path: path, FileName: "gone.txt", MIMEType: "text/plain"})
	require.NoError(t, os.Remove(path))

	assert.Equal(t, http.StatusNotFound, f.do("GET", "/files/"+grant.Token, "").Code)
}
