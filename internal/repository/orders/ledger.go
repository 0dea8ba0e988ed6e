package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

const breakerName = "order-service"

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "purchase_ledger_breaker_state",
		Help: "State of the order service circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Config holds order service client settings
type Config struct {
	BaseURL string
	// Timeout bounds a single HTTP call
	Timeout time.Duration
	// BreakerTimeout is how long the breaker stays open before probing again
	BreakerTimeout time.Duration
	// MinRequests and FailureRatio decide when the breaker trips
	MinRequests  uint32
	FailureRatio float64
}

// DefaultConfig returns client settings for the given base URL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		Timeout:        3 * time.Second,
		BreakerTimeout: 30 * time.Second,
		MinRequests:    5,
		FailureRatio:   0.5,
	}
}

type deliveredResponse struct {
	Delivered bool `json:"delivered"`
}

// Ledger implements domain.PurchaseLedger against the order service.
// It asks whether the user has a delivered order containing the product.
type Ledger struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[bool]
	logger     *logger.Logger
}

// NewLedger creates an order service backed purchase ledger
func NewLedger(cfg Config, log *logger.Logger) *Ledger {
	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state change")
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	breakerState.WithLabelValues(breakerName).Set(0)

	return &Ledger{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[bool](settings),
		logger:     log,
	}
}

// HasDeliveredOrder reports whether userID received an order containing productID.
// Transport failures and an open breaker are reported as domain.ErrStoreUnavailable.
func (l *Ledger) HasDeliveredOrder(ctx context.Context, userID string, productID string) (bool, error) {
	delivered, err := l.breaker.Execute(func() (bool, error) {
		return l.lookup(ctx, userID, productID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false, fmt.Errorf("%w: order service circuit open", domain.ErrStoreUnavailable)
		}
		return false, fmt.Errorf("%w: order service: %w", domain.ErrStoreUnavailable, err)
	}

	return delivered, nil
}

func (l *Ledger) lookup(ctx context.Context, userID, productID string) (bool, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("product_id", productID)
	endpoint := l.baseURL + "/api/v1/orders/delivered?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out deliveredResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	return out.Delivered, nil
}

// State returns the current breaker state
func (l *Ledger) State() gobreaker.State {
	return l.breaker.State()
}
