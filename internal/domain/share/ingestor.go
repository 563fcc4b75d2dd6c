package share

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/Datash/backend/internal/bridge/codec"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Datash/backend/internal/providers/filesystem"
)

// DefaultDeliveryInterval separates successive file deliveries of one share
const DefaultDeliveryInterval = time.Second

// Resolver reads host resources
type Resolver interface {
	Open(ctx context.Context, ref string) (*filesystem.Resource, error)
}

// Sink receives pre-encoded items for the web surface
type Sink interface {
	DeliverText(ctx context.Context, b64Text string) error
	DeliverFile(ctx context.Context, b64Name, b64MIME, b64Content string) error
}

// Reporter is told about every failure of a share
type Reporter func(ev Event, err error)

// Ingestor normalizes share events into deliveries
type Ingestor struct {
	resolver Resolver
	sink     Sink
	report   Reporter
	interval time.Duration
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewIngestor creates an ingestor. A negative interval means the default; zero
// disables throttling.
func NewIngestor(resolver Resolver, sink Sink, report Reporter, interval time.Duration, logger *zap.Logger, metrics *monitoring.Metrics) *Ingestor {
	if interval < 0 {
		interval = DefaultDeliveryInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if report == nil {
		report = func(Event, error) {}
	}
	return &Ingestor{
		resolver: resolver,
		sink:     sink,
		report:   report,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run ingests ev. Per-item failures go to the Reporter; Run itself only fails
// when ctx is done.
func (i *Ingestor) Run(ctx context.Context, ev Event) error {
	log := i.logger.With(zap.String("share_id", ev.ID.String()), zap.String("kind", string(ev.Kind)))

	if ev.Kind == KindText {
		return i.deliverText(ctx, ev, log)
	}

	if len(ev.Resources) == 0 {
		log.Warn("Share has no resources")
		i.report(ev, fmt.Errorf("%w: no file to share", ErrContentUnavailable))
		return nil
	}

	var limiter *rate.Limiter
	if len(ev.Resources) > 1 && i.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(i.interval), 1)
	}

	delivered := 0
	for _, ref := range ev.Resources {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := i.resolver.Open(ctx, ref)
		if err != nil {
			log.Warn("Share resource unavailable", zap.String("resource", ref), zap.Error(err))
			i.report(ev, fmt.Errorf("%w: %s: %v", ErrContentUnavailable, ref, err))
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		err = i.sink.DeliverFile(ctx,
			codec.EncodeString(res.Name),
			codec.EncodeString(res.MIMEType),
			codec.Encode(res.Content),
		)
		if err != nil {
			log.Warn("Share delivery failed", zap.String("resource", ref), zap.Error(err))
			i.report(ev, err)
			continue
		}

		delivered++
		i.metrics.RecordShareDelivered(string(KindFile))
		log.Debug("Share file delivered",
			zap.String("name", res.Name),
			zap.String("mime_type", res.MIMEType),
			zap.Int("size", len(res.Content)))
	}

	log.Info("Share ingested", zap.Int("delivered", delivered), zap.Int("requested", len(ev.Resources)))
	return nil
}

func (i *Ingestor) deliverText(ctx context.Context, ev Event, log *zap.Logger) error {
	if ev.Text == nil {
		log.Warn("Text share without text")
		i.report(ev, fmt.Errorf("%w: no text to share", ErrContentUnavailable))
		return nil
	}

	if err := i.sink.DeliverText(ctx, codec.EncodeString(*ev.Text)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("Share delivery failed", zap.Error(err))
		i.report(ev, err)
		return nil
	}

	i.metrics.RecordShareDelivered(string(KindText))
	log.Info("Share text delivered")
	return nil
}
