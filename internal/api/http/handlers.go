package http

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Datash/backend/internal/domain/notify"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/share"
	"github.com/GriffinCanCode/Datash/backend/internal/providers/system"
)

// Version of the host API
const Version = "0.3.0"

// Sharer accepts share events for delivery
type Sharer interface {
	Share(ev share.Event)
}

// Readiness reports whether the web surface completed its handshake
type Readiness interface {
	Ready() bool
}

// Pending reports announced transfers awaiting completion
type Pending interface {
	Len() int
}

// Handlers contains all HTTP handlers
type Handlers struct {
	sharer    Sharer
	readiness Readiness
	pending   Pending
	store     notify.Store
	activator *notify.Activator
	grants    *notify.Grants
	host      *system.Host
	logger    *zap.Logger
}

// Deps wires the handlers
type Deps struct {
	Sharer    Sharer
	Readiness Readiness
	Pending   Pending
	Store     notify.Store
	Activator *notify.Activator
	Grants    *notify.Grants
	Host      *system.Host
	Logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	host := deps.Host
	if host == nil {
		host = system.NewHost()
	}
	return &Handlers{
		sharer:    deps.Sharer,
		readiness: deps.Readiness,
		pending:   deps.Pending,
		store:     deps.Store,
		activator: deps.Activator,
		grants:    deps.Grants,
		host:      host,
		logger:    logger,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Datash bridge",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"host":              h.host.Info(),
		"surface_ready":     h.readiness.Ready(),
		"transfers_pending": h.pending.Len(),
	})
}

// ShareRequest is the body of POST /shares
type ShareRequest struct {
	Text  *string  `json:"text"`
	Files []string `json:"files" binding:"omitempty,max=64,dive,required"`
}

// SubmitShare queues a share event
func (h *Handlers) SubmitShare(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ev share.Event
	switch {
	case req.Text != nil && len(req.Files) > 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "share either text or files, not both"})
		return
	case req.Text != nil:
		ev = share.NewTextEvent(*req.Text)
	case len(req.Files) > 0:
		ev = share.NewFilesEvent(req.Files...)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to share"})
		return
	}

	h.sharer.Share(ev)
	h.logger.Info("Share submitted", zap.String("share_id", ev.ID.String()), zap.String("kind", string(ev.Kind)))

	c.JSON(http.StatusAccepted, gin.H{
		"id":   ev.ID,
		"kind": ev.Kind,
	})
}

// ListNotifications lists current transfer notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	list := h.store.List()
	c.JSON(http.StatusOK, gin.H{
		"notifications": list,
		"count":         len(list),
	})
}

// OpenNotification activates a completion notification
func (h *Handlers) OpenNotification(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	grant, url, err := h.activator.Activate(c.Request.Context(), uint32(id))
	switch {
	case errors.Is(err, notify.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, notify.ErrNoAction):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "url": url})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      grant.Token,
		"url":        url,
		"mime_type":  grant.MIMEType,
		"expires_at": grant.ExpiresAt,
	})
}

// ServeFile serves a granted file read-only with its declared MIME type
func (h *Handlers) ServeFile(c *gin.Context) {
	grant, err := h.grants.Lookup(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	f, err := os.Open(grant.Path)
	if err != nil {
		h.logger.Warn("Granted file unavailable", zap.String("path", grant.Path), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "file no longer available"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "file no longer available"})
		return
	}

	if grant.MIMEType != "" {
		c.Header("Content-Type", grant.MIMEType)
	}
	c.Header("Content-Disposition", `inline; filename="`+strings.ReplaceAll(grant.FileName, `"`, "")+`"`)
	c.Header("Cache-Control", "no-store")
	http.ServeContent(c.Writer, c.Request, grant.FileName, info.ModTime(), f)
}

// Register mounts the handlers on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/shares", h.SubmitShare)
	router.GET("/notifications", h.ListNotifications)
	router.POST("/notifications/:id/open", h.OpenNotification)
	router.GET("/files/:token", h.ServeFile)
}
