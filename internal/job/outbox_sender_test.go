package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftshop/internal/config"
	"giftshop/internal/model"
	"giftshop/internal/store/memstore"
)

type fakeBroker struct {
	mu     sync.Mutex
	sent   []string
	broken bool
}

func (b *fakeBroker) publish(topic, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.broken {
		return errors.New("broker down")
	}
	b.sent = append(b.sent, key)
	return nil
}

func newSender(st *memstore.MemStore, broker *fakeBroker) *OutboxSender {
	cfg := &config.Config{}
	cfg.Business.MaxRetryCount = 2
	return &OutboxSender{
		outbox:    st.Outbox(),
		publish:   broker.publish,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		interval:  time.Millisecond,
		batchSize: 10,
	}
}

func TestOutboxSender(t *testing.T) {
	ctx := context.Background()

	t.Run("pending messages get shipped and marked", func(t *testing.T) {
		st := memstore.New()
		broker := &fakeBroker{}
		sender := newSender(st, broker)

		msg := &model.OutboxMessage{MessageKey: "k1", Topic: "t", Payload: "{}"}
		require.NoError(t, st.Outbox().Enqueue(ctx, msg))

		sender.processPending(ctx)

		assert.Equal(t, []string{"k1"}, broker.sent)

		pending, err := st.Outbox().Pending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("broker failure retries then gives up", func(t *testing.T) {
		st := memstore.New()
		broker := &fakeBroker{broken: true}
		sender := newSender(st, broker)

		msg := &model.OutboxMessage{MessageKey: "k1", Topic: "t", Payload: "{}"}
		require.NoError(t, st.Outbox().Enqueue(ctx, msg))

		// First pass increments the retry count, second pass trips the
		// max-retry limit and parks the message as FAILED.
		sender.processPending(ctx)
		sender.processPending(ctx)

		pending, err := st.Outbox().Pending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending, "failed message no longer pending")
		assert.Empty(t, broker.sent)
	})
}
