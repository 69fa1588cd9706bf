package job

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/IBM/sarama"

	"giftshop/internal/config"
	"giftshop/internal/model"
	"giftshop/internal/service"
)

// IngestConsumer feeds asset drafts from the external catalog feed
// into the catalog. Ingestion dedups on the draft's external_ref, so
// the at-least-once delivery of a consumer group is safe: a replayed
// draft returns the existing asset and nothing else changes.
type IngestConsumer struct {
	group   sarama.ConsumerGroup
	catalog *service.CatalogService
	topic   string
}

func NewIngestConsumer(group sarama.ConsumerGroup, catalog *service.CatalogService, cfg *config.Config) *IngestConsumer {
	return &IngestConsumer{
		group:   group,
		catalog: catalog,
		topic:   cfg.Kafka.Topic.AssetDrafts,
	}
}

func (c *IngestConsumer) Start(ctx context.Context) {
	log.Println("[IngestConsumer] started")

	for {
		if ctx.Err() != nil {
			log.Println("[IngestConsumer] context cancelled, exiting")
			return
		}
		// Consume returns when a rebalance happens; loop to rejoin.
		if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
			log.Printf("[IngestConsumer] consume error: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *IngestConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *IngestConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (c *IngestConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := c.handle(session.Context(), message); err != nil {
			// Leave the offset unmarked so the group redelivers the
			// draft once storage is back.
			log.Printf("[IngestConsumer] ingest failed, will redeliver: offset=%d err=%v", message.Offset, err)
			return err
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// handle processes one draft. A nil return means the offset can be
// committed: the draft was ingested, or it is permanently bad and
// redelivering it would never help. A non-nil return is a transient
// storage failure and the message must stay pending.
func (c *IngestConsumer) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	var draft model.AssetDraft
	if err := json.Unmarshal(message.Value, &draft); err != nil {
		log.Printf("[IngestConsumer] dropping malformed draft: offset=%d err=%v", message.Offset, err)
		return nil
	}

	asset, err := c.catalog.Ingest(ctx, &draft)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDraft) || errors.Is(err, service.ErrInvalidAmount) {
			log.Printf("[IngestConsumer] dropping rejected draft: ref=%s err=%v", draft.ExternalRef, err)
			return nil
		}
		return err
	}

	log.Printf("[IngestConsumer] ingested: asset=%d ref=%s", asset.AssetID, asset.ExternalRef)
	return nil
}
