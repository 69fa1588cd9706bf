package job

import (
	"context"
	"log"
	"time"

	"giftshop/internal/config"
	"giftshop/internal/infrastructure/mq"
	"giftshop/internal/model"
	"giftshop/internal/store"
)

// Publisher is what the sender needs from the message broker.
type Publisher func(topic, key, value string) error

// OutboxSender drains PENDING outbox rows to Kafka. Delivery is
// at-least-once; consumers dedup on the event id in the payload.
type OutboxSender struct {
	outbox    store.Outbox
	publish   Publisher
	cfg       *config.Config
	stopCh    chan struct{}
	interval  time.Duration
	batchSize int
}

func NewOutboxSender(st store.Store, cfg *config.Config) *OutboxSender {
	return &OutboxSender{
		outbox:    st.Outbox(),
		publish:   mq.SendMessage,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		interval:  100 * time.Millisecond,
		batchSize: 100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log.Println("[OutboxSender] started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxSender] context cancelled, exiting")
			return
		case <-s.stopCh:
			log.Println("[OutboxSender] stopped")
			return
		case <-ticker.C:
			s.processPending(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

func (s *OutboxSender) processPending(ctx context.Context) {
	messages, err := s.outbox.Pending(ctx, s.batchSize)
	if err != nil {
		log.Printf("[OutboxSender] fetching pending messages failed: %v", err)
		return
	}

	for _, msg := range messages {
		s.send(ctx, msg)
	}
}

func (s *OutboxSender) send(ctx context.Context, msg *model.OutboxMessage) {
	err := s.publish(msg.Topic, msg.MessageKey, msg.Payload)

	if err == nil {
		if updateErr := s.outbox.MarkSent(ctx, msg.ID); updateErr != nil {
			log.Printf("[OutboxSender] marking message sent failed: id=%d err=%v", msg.ID, updateErr)
		}
		return
	}

	log.Printf("[OutboxSender] publish failed: id=%d err=%v", msg.ID, err)

	if err := s.outbox.IncrementRetry(ctx, msg.ID); err != nil {
		log.Printf("[OutboxSender] incrementing retry failed: id=%d err=%v", msg.ID, err)
	}

	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.outbox.MarkFailed(ctx, msg.ID); err != nil {
			log.Printf("[OutboxSender] marking message failed failed: id=%d err=%v", msg.ID, err)
		} else {
			log.Printf("[OutboxSender] message exceeded max retries: id=%d", msg.ID)
		}
	}
}
