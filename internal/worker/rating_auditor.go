package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

const (
	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

var aggregateRepairsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rating_auditor_repairs_total",
	Help: "Total number of product aggregates rewritten because they drifted from the reviews table",
})

// AggregateAuditor verifies one product's stored aggregate
type AggregateAuditor interface {
	Audit(ctx context.Context, productID uuid.UUID) (bool, error)
}

// RatingAuditor consumes review events and re-verifies the affected product's
// aggregate once events for it stop arriving for the debounce window
type RatingAuditor struct {
	auditor        AggregateAuditor
	debounceWindow time.Duration
	logger         *logger.Logger

	// Debouncing state
	mu             sync.Mutex
	pendingUpdates map[uuid.UUID]*pendingUpdate
	shutdownCh     chan struct{}
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

type pendingUpdate struct {
	productID uuid.UUID
	timestamp time.Time
	timer     *time.Timer
}

// NewRatingAuditor creates a new rating auditor
func NewRatingAuditor(auditor AggregateAuditor, debounceWindow time.Duration, logger *logger.Logger) *RatingAuditor {
	ctx, cancel := context.WithCancel(context.Background())

	return &RatingAuditor{
		auditor:        auditor,
		debounceWindow: debounceWindow,
		logger:         logger,
		pendingUpdates: make(map[uuid.UUID]*pendingUpdate),
		shutdownCh:     make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// HandleEvent processes a review event
func (w *RatingAuditor) HandleEvent(data []byte) error {
	var event domain.ReviewEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.Error("Failed to unmarshal review event", err)
		return fmt.Errorf("%w: failed to unmarshal event: %w", domain.ErrInvalidInput, err)
	}

	if event.ProductID == uuid.Nil {
		return fmt.Errorf("%w: review event without product_id", domain.ErrInvalidInput)
	}

	w.logger.WithFields(map[string]any{
		"type":       event.EventType,
		"product_id": event.ProductID.String(),
		"timestamp":  event.Timestamp,
	}).Info("Received review event")

	w.scheduleAudit(event.ProductID, event.Timestamp)

	return nil
}

// scheduleAudit collapses bursts of events for the same product into one audit
func (w *RatingAuditor) scheduleAudit(productID uuid.UUID, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdownCh:
		w.logger.Info("Auditor shutting down, ignoring new event")
		return
	default:
	}

	existing, found := w.pendingUpdates[productID]

	if found && timestamp.Before(existing.timestamp) {
		w.logger.WithFields(map[string]any{
			"product_id":  productID.String(),
			"existing_ts": existing.timestamp,
			"event_ts":    timestamp,
		}).Debug("Ignoring stale event")
		return
	}

	// A timer that already fired owns its own wg slot
	if !found || !existing.timer.Stop() {
		w.wg.Add(1)
	}

	p := &pendingUpdate{
		productID: productID,
		timestamp: timestamp,
	}
	p.timer = time.AfterFunc(w.debounceWindow, func() {
		w.processAudit(p)
	})
	w.pendingUpdates[productID] = p
}

// processAudit runs the audit with retry logic
func (w *RatingAuditor) processAudit(p *pendingUpdate) {
	defer w.wg.Done()

	w.mu.Lock()
	if cur, ok := w.pendingUpdates[p.productID]; ok && cur == p {
		delete(w.pendingUpdates, p.productID)
	}
	w.mu.Unlock()

	productID := p.productID
	w.logger.WithFields(map[string]any{
		"product_id": productID.String(),
	}).Debug("Auditing product aggregate")

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"product_id": productID.String(),
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying aggregate audit")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Info("Auditor context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
		repaired, err := w.auditor.Audit(ctx, productID)
		cancel()

		if err == nil {
			if repaired {
				aggregateRepairsTotal.Inc()
			}
			return
		}

		lastErr = err
		w.logger.WithFields(map[string]any{
			"product_id": productID.String(),
			"attempt":    attempt + 1,
		}).Error("Failed to audit aggregate", err)
	}

	w.logger.WithFields(map[string]any{
		"product_id":  productID.String(),
		"max_retries": maxRetries,
	}).Error("Aggregate audit failed after all retries", lastErr)
}

// Shutdown cancels pending audits and waits for in-flight ones to finish
func (w *RatingAuditor) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down rating auditor...")

	w.mu.Lock()
	close(w.shutdownCh)
	pendingCount := 0
	for _, update := range w.pendingUpdates {
		if update.timer.Stop() {
			w.wg.Done()
			pendingCount++
		}
	}
	w.pendingUpdates = make(map[uuid.UUID]*pendingUpdate)
	w.mu.Unlock()

	// In-flight audits may finish until ctx expires
	defer w.cancel()

	w.logger.WithFields(map[string]any{
		"cancelled_audits": pendingCount,
	}).Info("Cancelled pending audits")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight audits completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// GetPendingCount returns the number of scheduled audits
func (w *RatingAuditor) GetPendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingUpdates)
}
