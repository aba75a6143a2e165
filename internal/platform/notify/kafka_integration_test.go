//go:build integration

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"ishemalink/pkg/testutil/containers"
)

func TestKafkaNotifierProducesRecord(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := NewKafkaNotifier(rp.Brokers, "notifications.sms", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, n.EnsureTopic(ctx, 1, 1))
	require.NoError(t, n.EnsureTopic(ctx, 1, 1), "second ensure must tolerate an existing topic")
	require.NoError(t, n.Send(ctx, "+250788123456", "Your package is now IN_TRANSIT at Huye"))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics("notifications.sms"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())

	var got []SMSRecord
	fetches.EachRecord(func(r *kgo.Record) {
		var rec SMSRecord
		require.NoError(t, json.Unmarshal(r.Value, &rec))
		got = append(got, rec)
	})
	require.Len(t, got, 1)
	require.Equal(t, "+250788123456", got[0].To)
}
