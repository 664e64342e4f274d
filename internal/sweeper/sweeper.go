package sweeper

import (
	"context"
	"errors"
	"time"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/metrics"
	"parsshop-be/internal/order"
	"parsshop-be/internal/payment"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs the sweep every thirty minutes.
const DefaultSchedule = "*/30 * * * *"

// staleAfter is how old an unpaid gateway order must be before the sweep
// re-verifies it; younger orders may still have a callback in flight.
const staleAfter = 30 * time.Minute

// OrderSettler is the slice of the order service the sweeper drives.
type OrderSettler interface {
	ListStale(ctx context.Context, olderThan time.Time) ([]*order.Order, error)
	VerifyPayment(ctx context.Context, authority, callbackStatus string) (*order.Order, int64, error)
}

// CodeStore cleans up expired verification codes.
type CodeStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper reconciles orders whose gateway callback was lost: paid-but-
// unmarked orders get settled, everything else is left for the next run.
type Sweeper struct {
	orders OrderSettler
	codes  CodeStore
	cron   *cron.Cron
	now    func() time.Time
}

func New(orders OrderSettler, codes CodeStore) *Sweeper {
	return &Sweeper{
		orders: orders,
		codes:  codes,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start registers the sweep on the given cron spec and starts the
// scheduler.
func (s *Sweeper) Start(spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}
	_, err := s.cron.AddFunc(spec, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	logger.L().Info("sweeper scheduled", zap.String("spec", spec))
	return nil
}

// Stop halts the scheduler; the returned context is done once any
// in-flight sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep re-verifies every stale unpaid gateway order. Each order is
// handled in isolation: a panic or error on one never stops the rest.
func (s *Sweeper) Sweep(ctx context.Context) (settled int) {
	log := logger.FromCtx(ctx).With(zap.String("service", "Sweeper"))
	metrics.SweeperRuns.Inc()

	cutoff := s.now().Add(-staleAfter)
	stale, err := s.orders.ListStale(ctx, cutoff)
	if err != nil {
		log.Error("listing stale orders failed", zap.Error(err))
		return 0
	}
	if len(stale) > 0 {
		log.Info("re-verifying stale orders", zap.Int("count", len(stale)))
	}

	for _, o := range stale {
		if s.sweepOrder(ctx, o) {
			settled++
			metrics.SweeperSettled.Inc()
		}
	}

	if s.codes != nil {
		if n, err := s.codes.DeleteExpired(ctx, s.now()); err != nil {
			log.Error("cleaning expired verification codes failed", zap.Error(err))
		} else if n > 0 {
			log.Info("expired verification codes removed", zap.Int64("count", n))
		}
	}

	if settled > 0 {
		log.Info("sweep settled orders", zap.Int("settled", settled))
	}
	return settled
}

func (s *Sweeper) sweepOrder(ctx context.Context, o *order.Order) (settled bool) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Sweeper"),
		zap.Int64("order_id", o.ID),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("sweep of order panicked", zap.Any("panic", r))
			settled = false
		}
	}()

	if o.Authority == nil {
		return false
	}

	_, refID, err := s.orders.VerifyPayment(ctx, *o.Authority, "")
	if err != nil {
		var gerr *payment.GatewayError
		if errors.As(err, &gerr) && payment.IsTerminalVerifyCode(gerr.Code) {
			// The session is dead at the gateway; nothing to settle, and
			// no point re-trying on later sweeps either.
			log.Info("gateway session terminal",
				zap.Int("code", gerr.Code), zap.String("message", gerr.Message))
			return false
		}
		log.Warn("re-verification failed, will retry next sweep", zap.Error(err))
		return false
	}

	log.Info("stale order settled", zap.Int64("ref_id", refID))
	return true
}
