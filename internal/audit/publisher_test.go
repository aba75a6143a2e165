package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/platform/audit/store/memory"
	"ishemalink/pkg/requestcontext"
)

func TestRecordEnrichesFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	var logs bytes.Buffer
	p := NewPublisher(store, slog.New(slog.NewJSONHandler(&logs, nil)))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithClientMetadata(ctx, "10.1.2.3", "curl/8.0")
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	actor := id.UserID(uuid.New())
	require.NoError(t, p.Record(ctx, &actor, audit.ActionKYCVerified, "NID ending 5678"))

	events, err := p.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, now, e.CreatedAt)
	assert.Equal(t, "10.1.2.3", e.IP)
	assert.Equal(t, "req-42", e.RequestID)
	assert.Equal(t, actor, *e.ActorID)
	assert.False(t, uuid.UUID(e.ID) == uuid.Nil)

	assert.Contains(t, logs.String(), `"log_type":"audit"`)
	assert.Contains(t, logs.String(), `"action":"KYC_VERIFIED"`)
}

func TestRecordAnonymousActor(t *testing.T) {
	store := memory.NewInMemoryStore()
	p := NewPublisher(store, nil)

	require.NoError(t, p.Record(context.Background(), nil, audit.ActionLoginFailed, "phone ending 3456"))

	events, err := p.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].ActorID)
}
