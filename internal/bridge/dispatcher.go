package bridge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Datash/backend/internal/bridge/codec"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/notify"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/share"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/transfer"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/loop"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/workers"
	"github.com/GriffinCanCode/Datash/backend/internal/providers/filesystem"
)

// ErrNoSurface is returned when no web surface is attached
var ErrNoSurface = errors.New("no web surface attached")

// Surface is the attached web surface. Methods are only called on the loop.
type Surface interface {
	Evaluate(ctx context.Context, script string) error
	Toast(ctx context.Context, message string, success bool) error
	Pong(ctx context.Context) error
	Reject(ctx context.Context, message string) error
}

// Deps wires a Dispatcher
type Deps struct {
	Loop      *loop.Loop
	Pool      *workers.Pool
	Registry  *transfer.Registry
	Downloads *filesystem.Downloads
	Notifier  *notify.Coordinator
	Store     notify.Store
	Activator *notify.Activator
	Resolver  share.Resolver
	Logger    *zap.Logger
	Metrics   *monitoring.Metrics

	DeliveryInterval time.Duration
	OpenOnComplete   bool
}

// Dispatcher routes bridge calls and owns the loop-side bridge state
type Dispatcher struct {
	loop      *loop.Loop
	pool      *workers.Pool
	registry  *transfer.Registry
	downloads *filesystem.Downloads
	notifier  *notify.Coordinator
	store     notify.Store
	activator *notify.Activator
	ingestor  *share.Ingestor
	gate      *Gate
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	openOnComplete bool

	// Owned by the loop
	surface Surface
}

type saved struct {
	path  string
	bytes int
}

// New creates a dispatcher
func New(deps Deps) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		loop:           deps.Loop,
		pool:           deps.Pool,
		registry:       deps.Registry,
		downloads:      deps.Downloads,
		notifier:       deps.Notifier,
		store:          deps.Store,
		activator:      deps.Activator,
		gate:           NewGate(),
		logger:         logger,
		metrics:        deps.Metrics,
		openOnComplete: deps.OpenOnComplete,
	}
	d.ingestor = share.NewIngestor(deps.Resolver, d, d.reportShare, deps.DeliveryInterval, logger.Named("share"), deps.Metrics)
	return d
}

// Gate exposes the readiness gate
func (d *Dispatcher) Gate() *Gate {
	return d.gate
}

// Attach makes s the current surface. The gate stays closed until s calls ready().
func (d *Dispatcher) Attach(s Surface) {
	d.loop.Post(func() {
		d.surface = s
		d.gate.Reset()
	})
}

// Detach forgets s if it is still the current surface and resets the gate
func (d *Dispatcher) Detach(s Surface) {
	d.loop.Post(func() {
		if d.surface != s {
			return
		}
		d.surface = nil
		d.gate.Reset()
	})
}

// Handle accepts an inbound call from s. It never blocks on bridge work.
func (d *Dispatcher) Handle(s Surface, call Call) {
	d.loop.Post(func() {
		d.dispatch(s, call)
	})
}

// Share queues ev for ingestion once the surface is ready
func (d *Dispatcher) Share(ev share.Event) {
	d.loop.Post(func() {
		if !d.gate.Ready() {
			d.logger.Info("Share deferred until surface is ready", zap.String("share_id", ev.ID.String()))
		}
		d.gate.Defer(func() { d.ingest(ev) })
	})
}

// DeliverText evaluates the text delivery script on the surface
func (d *Dispatcher) DeliverText(ctx context.Context, b64Text string) error {
	return d.loop.Call(ctx, func() error {
		return d.evaluate(ctx, DeliverTextScript(b64Text))
	})
}

// DeliverFile evaluates the file delivery script on the surface
func (d *Dispatcher) DeliverFile(ctx context.Context, b64Name, b64MIME, b64Content string) error {
	return d.loop.Call(ctx, func() error {
		return d.evaluate(ctx, DeliverFileScript(b64Name, b64MIME, b64Content))
	})
}

// RunSweeper expires abandoned transfers every interval until ctx is done
func (d *Dispatcher) RunSweeper(ctx context.Context, interval time.Duration) {
	if d.registry.TTL() <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.sweep(now)
		}
	}
}

func (d *Dispatcher) sweep(now time.Time) {
	expired := d.registry.Expire(now)
	for _, rec := range expired {
		d.logger.Warn("Transfer expired before completion",
			zap.String("ref_id", rec.RefID),
			zap.String("file_name", rec.FileName),
			zap.Duration("age", now.Sub(rec.AnnouncedAt)))
		d.metrics.RecordTransfer("expired", 0)
		if d.store != nil {
			d.store.Put(notify.Expired(rec.RefID, rec.FileName, now))
		}
	}
	if len(expired) > 0 {
		d.metrics.SetTransfersPending(d.registry.Len())
	}
}

// dispatch runs on the loop
func (d *Dispatcher) dispatch(s Surface, call Call) {
	ctx := context.Background()
	log := d.logger.With(zap.String("method", call.Method))

	var err error
	switch call.Method {
	case MethodReady:
		if err = checkArity(MethodReady, call.Args); err == nil {
			d.ready()
		}
	case MethodPing:
		if err = checkArity(MethodPing, call.Args); err == nil {
			err = s.Pong(ctx)
		}
	case MethodBeginTransfer:
		var args BeginArgs
		if args, err = ParseBegin(call.Args); err == nil {
			d.beginTransfer(args)
		}
	case MethodCompleteTransfer:
		var args CompleteArgs
		if args, err = ParseComplete(call.Args); err == nil {
			d.completeTransfer(args)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownMethod, call.Method)
	}

	if err != nil {
		d.metrics.RecordBridgeCall(call.Method, "rejected")
		d.metrics.RecordBridgeError(ErrorKind(err))
		log.Warn("Bridge call rejected", zap.Error(err))
		if rerr := s.Reject(ctx, err.Error()); rerr != nil {
			log.Debug("Failed to send rejection", zap.Error(rerr))
		}
		return
	}
	d.metrics.RecordBridgeCall(call.Method, "ok")
}

func (d *Dispatcher) ready() {
	if d.gate.Open() {
		d.logger.Info("Web surface ready")
		return
	}
	d.logger.Debug("Duplicate ready ignored")
}

func (d *Dispatcher) beginTransfer(args BeginArgs) {
	rec := d.registry.Begin(args.RefID, args.SourceID, args.FileName, args.SizeBytes, args.MIMEType)
	d.notifier.Announce(rec.RefID, rec.FileName)
	d.metrics.SetTransfersPending(d.registry.Len())

	d.logger.Info("Transfer announced",
		zap.String("ref_id", rec.RefID),
		zap.String("source_id", rec.SourceID),
		zap.String("file_name", rec.FileName),
		zap.Int64("size", rec.SizeBytes),
		zap.String("mime_type", rec.MIMEType))
}

func (d *Dispatcher) completeTransfer(args CompleteArgs) {
	rec, err := d.registry.Complete(args.RefID)
	if err != nil {
		d.fail(err)
		return
	}
	d.metrics.SetTransfersPending(d.registry.Len())

	content := args.Content
	fut, err := workers.TrySubmit(d.pool, "complete-transfer", func(ctx context.Context) (saved, error) {
		data, err := codec.Decode(content)
		if err != nil {
			return saved{}, err
		}
		path, err := d.downloads.Save(rec.FileName, data)
		if err != nil {
			return saved{}, err
		}
		return saved{path: path, bytes: len(data)}, nil
	})
	if err != nil {
		d.metrics.RecordTransfer("failed", 0)
		d.fail(fmt.Errorf("failed to schedule %s: %w", rec.FileName, err))
		return
	}

	fut.ApplyOn(d.loop, func(res saved, err error) {
		d.applyComplete(rec, res, err)
	})
}

// applyComplete runs on the loop
func (d *Dispatcher) applyComplete(rec transfer.Record, res saved, err error) {
	if err != nil {
		d.metrics.RecordTransfer("failed", 0)
		d.logger.Error("Transfer failed",
			zap.String("ref_id", rec.RefID),
			zap.String("file_name", rec.FileName),
			zap.Error(err))
		d.fail(err)
		return
	}

	name := filepath.Base(res.path)
	text := "Download complete: " + name
	n := d.notifier.Finish(rec.RefID, text, notify.OpenAction{
		Path:     res.path,
		FileName: name,
		MIMEType: rec.MIMEType,
	})
	d.metrics.RecordTransfer("completed", res.bytes)

	d.logger.Info("Transfer completed",
		zap.String("ref_id", rec.RefID),
		zap.String("path", res.path),
		zap.Int("bytes", res.bytes))

	d.toast(text, true)

	if d.openOnComplete && d.activator != nil {
		if _, _, err := d.activator.Activate(context.Background(), n.ID); err != nil {
			d.logger.Warn("Failed to open completed download", zap.String("path", res.path), zap.Error(err))
		}
	}
}

// ingest runs on the loop once the gate is open
func (d *Dispatcher) ingest(ev share.Event) {
	fut, err := workers.TrySubmit(d.pool, "share", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.ingestor.Run(ctx, ev)
	})
	if err != nil {
		d.fail(fmt.Errorf("failed to schedule share %s: %w", ev.ID, err))
		return
	}

	fut.ApplyOn(d.loop, func(_ struct{}, err error) {
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		d.logger.Error("Share task failed", zap.String("share_id", ev.ID.String()), zap.Error(err))
		d.fail(err)
	})
}

// reportShare is called from workers
func (d *Dispatcher) reportShare(ev share.Event, err error) {
	d.loop.Post(func() {
		d.logger.Warn("Share item failed", zap.String("share_id", ev.ID.String()), zap.Error(err))
		d.fail(err)
	})
}

// evaluate runs on the loop. A surface that has not called ready() yet is
// treated as absent.
func (d *Dispatcher) evaluate(ctx context.Context, script string) error {
	if d.surface == nil || !d.gate.Ready() {
		return ErrNoSurface
	}
	return d.surface.Evaluate(ctx, script)
}

// fail runs on the loop
func (d *Dispatcher) fail(err error) {
	d.metrics.RecordBridgeError(ErrorKind(err))
	d.toast(err.Error(), false)
}

func (d *Dispatcher) toast(message string, success bool) {
	if d.surface == nil {
		return
	}
	if err := d.surface.Toast(context.Background(), message, success); err != nil {
		d.logger.Debug("Failed to show transient message", zap.Error(err))
	}
}

// ErrorKind classifies err for metrics
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, codec.ErrDecode):
		return "decode"
	case errors.Is(err, transfer.ErrUnknownTransfer):
		return "unknown_transfer"
	case errors.Is(err, filesystem.ErrFilesystem):
		return "filesystem"
	case errors.Is(err, share.ErrContentUnavailable):
		return "content_unavailable"
	case errors.Is(err, workers.ErrTaskPanic):
		return "panic"
	case errors.Is(err, workers.ErrQueueFull), errors.Is(err, workers.ErrPoolClosed):
		return "busy"
	case errors.Is(err, ErrUnknownMethod), errors.Is(err, ErrBadArguments):
		return "bad_call"
	case errors.Is(err, ErrNoSurface):
		return "no_surface"
	default:
		return "internal"
	}
}
