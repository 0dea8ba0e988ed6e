package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

func newTestLedger(url string) *Ledger {
	cfg := DefaultConfig(url)
	cfg.Timeout = time.Second
	cfg.MinRequests = 2
	return NewLedger(cfg, logger.New("test"))
}

func TestLedger_HasDeliveredOrder_True(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders/delivered", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "p1", r.URL.Query().Get("product_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"delivered":true}`))
	}))
	defer srv.Close()

	ok, err := newTestLedger(srv.URL).HasDeliveredOrder(context.Background(), "u1", "p1")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLedger_HasDeliveredOrder_False(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"delivered":false}`))
	}))
	defer srv.Close()

	ok, err := newTestLedger(srv.URL).HasDeliveredOrder(context.Background(), "u1", "p1")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_HasDeliveredOrder_NotFoundMeansNoOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ok, err := newTestLedger(srv.URL).HasDeliveredOrder(context.Background(), "u1", "p1")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_HasDeliveredOrder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ok, err := newTestLedger(srv.URL).HasDeliveredOrder(context.Background(), "u1", "p1")

	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLedger_HasDeliveredOrder_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestLedger(srv.URL).HasDeliveredOrder(context.Background(), "u1", "p1")

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLedger_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ledger := newTestLedger(srv.URL)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := ledger.HasDeliveredOrder(ctx, "u1", "p1")
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, ledger.State())

	_, err := ledger.HasDeliveredOrder(ctx, "u1", "p1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}
