package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifierSend(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)), 0)

	require.NoError(t, n.Send(context.Background(), "+250788123456", "Your package is now DELIVERED at Kigali"))

	out := buf.String()
	assert.Contains(t, out, "sms sent")
	assert.Contains(t, out, "***456")
	assert.False(t, strings.Contains(out, "+250788123456"), "destination must be masked")
}

func TestLogNotifierHonoursCancellation(t *testing.T) {
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := n.Send(ctx, "+250788123456", "hello")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMaskDestination(t *testing.T) {
	assert.Equal(t, "***", MaskDestination("12"))
	assert.Equal(t, "***789", MaskDestination("+250788123789"))
}
