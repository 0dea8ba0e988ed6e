package events

import (
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

func TestGenerateExponentialBackoff(t *testing.T) {
	assert.Nil(t, generateExponentialBackoff(1))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, generateExponentialBackoff(AuditorConsumer.MaxDeliver))
	assert.Len(t, generateExponentialBackoff(ModerationFeedConsumer.MaxDeliver), 4)
}

func TestStreamSettings(t *testing.T) {
	cfg := streamSettings()

	assert.Equal(t, nats.InterestPolicy, cfg.Retention)
	assert.Equal(t, []string{domain.ReviewEventsSubject}, cfg.Subjects)
	assert.Equal(t, DuplicateWindow, cfg.Duplicates)
}

func TestNeedsUpdate(t *testing.T) {
	want := streamSettings()

	same := *want
	assert.False(t, needsUpdate(&same, want))

	older := *want
	older.MaxAge = time.Hour
	assert.True(t, needsUpdate(&older, want))

	moved := *want
	moved.Subjects = []string{"reviews.legacy"}
	assert.True(t, needsUpdate(&moved, want))
}

func TestConsumerSpecs_Distinct(t *testing.T) {
	assert.NotEqual(t, AuditorConsumer.Name, ModerationFeedConsumer.Name)
}

func TestMessageID_StableForSamePayload(t *testing.T) {
	a := messageID([]byte(`{"event_type":"review.created"}`))

	assert.Equal(t, a, messageID([]byte(`{"event_type":"review.created"}`)))
	assert.NotEqual(t, a, messageID([]byte(`{"event_type":"review.deleted"}`)))
	assert.Len(t, a, 32)
}

type fakeMsg struct {
	acked, naked, termed int
	err                  error
}

func (m *fakeMsg) Ack(...nats.AckOpt) error  { m.acked++; return m.err }
func (m *fakeMsg) Nak(...nats.AckOpt) error  { m.naked++; return m.err }
func (m *fakeMsg) Term(...nats.AckOpt) error { m.termed++; return m.err }

func TestSettle(t *testing.T) {
	log := logger.New("test")

	tests := []struct {
		name                 string
		handleErr            error
		acked, naked, termed int
	}{
		{"handled", nil, 1, 0, 0},
		{"malformed", domain.ErrInvalidInput, 0, 0, 1},
		{"transient", errors.New("database unavailable"), 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &fakeMsg{}
			settle(msg, tt.handleErr, log)

			assert.Equal(t, tt.acked, msg.acked)
			assert.Equal(t, tt.naked, msg.naked)
			assert.Equal(t, tt.termed, msg.termed)
		})
	}
}

func TestSettle_AckFailureIsLogged(t *testing.T) {
	msg := &fakeMsg{err: errors.New("connection closed")}

	assert.NotPanics(t, func() { settle(msg, nil, logger.New("test")) })
	assert.Equal(t, 1, msg.acked)
}
