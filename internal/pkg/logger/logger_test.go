package logger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	assert.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	assert.NoError(t, SetLevel(""))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	assert.Error(t, SetLevel("loud"))
}

func TestContextRoundTrip(t *testing.T) {
	base := New("test")
	scoped := base.With("request_id", "abc")

	ctx := scoped.IntoContext(context.Background())

	assert.Same(t, scoped, FromContext(ctx, base))
	assert.Same(t, base, FromContext(context.Background(), base))
}

func TestNew_DevelopmentEnablesDebug(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	New("development")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	New("production")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
