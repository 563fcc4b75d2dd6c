package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Datash/backend/internal/api/ws"
	"github.com/GriffinCanCode/Datash/backend/internal/bridge/codec"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/notify"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/share"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Datash/backend/internal/providers/system"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DownloadsDir = dir
	cfg.Bridge.DeliveryInterval = 0
	cfg.RateLimit.Enabled = false

	srv, err := NewServer(cfg,
		WithLogger(logging.NewNop()),
		WithRegistry(prometheus.NewRegistry()),
		WithOpener(system.NewLogOpener(nil)),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		srv.Close()
	})
	return srv, ts, dir
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/bridge"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	greeting := readFrame(t, conn, ws.TypeSystem)
	assert.Contains(t, greeting.Message, "Datash")
	return conn
}

func call(t *testing.T, conn *websocket.Conn, method string, args ...string) {
	t.Helper()
	data, err := sonic.Marshal(ws.Frame{Type: ws.TypeCall, Method: method, Args: args})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readFrame skips frames until one of type want arrives
func readFrame(t *testing.T, conn *websocket.Conn, want string) ws.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var f ws.Frame
		require.NoError(t, sonic.Unmarshal(data, &f))
		if f.Type == want {
			return f
		}
	}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, sonic.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var body struct {
		Status           string `json:"status"`
		SurfaceReady     bool   `json:"surface_ready"`
		TransfersPending int    `json:"transfers_pending"`
	}
	code := getJSON(t, ts.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.False(t, body.SurfaceReady)
	assert.Zero(t, body.TransfersPending)
}

func TestTransferEndToEnd(t *testing.T) {
	_, ts, dir := newTestServer(t)
	conn := dial(t, ts)

	content := []byte("\x89PNG fake image bytes")
	call(t, conn, "ready")
	call(t, conn, "beginTransfer", "ref-1", "src-1", "photo.png", fmt.Sprint(len(content)), "image/png")

	announced := readFrame(t, conn, ws.TypeNotification)
	require.NotNil(t, announced.Notification)
	assert.Equal(t, notify.IDFor("ref-1"), announced.Notification.ID)
	assert.True(t, announced.Notification.Ongoing)
	assert.Equal(t, "photo.png", announced.Notification.Text)

	call(t, conn, "completeTransfer", "ref-1", codec.Encode(content))

	toast := readFrame(t, conn, ws.TypeToast)
	assert.Equal(t, "Download complete: photo.png", toast.Message)

	written, err := os.ReadFile(filepath.Join(dir, "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, content, written)

	var list struct {
		Notifications []notify.Notification `json:"notifications"`
		Count         int                   `json:"count"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/notifications", &list))
	require.Equal(t, 1, list.Count)
	finished := list.Notifications[0]
	assert.False(t, finished.Ongoing)
	assert.True(t, finished.AutoCancel)
	require.NotNil(t, finished.Action)

	resp, err := http.Post(fmt.Sprintf("%s/notifications/%d/open", ts.URL, finished.ID), "application/json", nil)
	require.NoError(t, err)
	var opened struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, sonic.Unmarshal(body, &opened))
	assert.True(t, strings.HasSuffix(opened.URL, "/files/"+opened.Token))

	fileResp, err := http.Get(ts.URL + "/files/" + opened.Token)
	require.NoError(t, err)
	defer fileResp.Body.Close()
	served, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, fileResp.StatusCode)
	assert.Equal(t, "image/png", fileResp.Header.Get("Content-Type"))
	assert.Equal(t, content, served)
}

func TestLaunchShareWaitsForReady(t *testing.T) {
	srv, ts, _ := newTestServer(t)

	srv.Share(share.NewTextEvent("hello from launch"))
	conn := dial(t, ts)

	call(t, conn, "ping")
	readFrame(t, conn, ws.TypePong)

	call(t, conn, "ready")
	f := readFrame(t, conn, ws.TypeEvaluate)
	assert.Contains(t, f.Script, "window.deliverText")
	assert.Contains(t, f.Script, codec.EncodeString("hello from launch"))
}

func TestRejectedCallOverSocket(t *testing.T) {
	_, ts, _ := newTestServer(t)
	conn := dial(t, ts)

	call(t, conn, "beginTransfer", "ref-1")
	f := readFrame(t, conn, ws.TypeError)
	assert.NotEmpty(t, f.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/", nil))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "datash_http_requests_total")
}

func TestForeignOriginRefused(t *testing.T) {
	_, ts, dir := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/bridge"

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/shares", strings.NewReader(`{"files":["/etc/passwd"]}`))
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Content-Type", "text/plain")
	shareResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	shareResp.Body.Close()
	assert.Equal(t, http.StatusForbidden, shareResp.StatusCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	header.Set("Origin", "http://127.0.0.1:8000")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}
