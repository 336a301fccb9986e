package event

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/tiwac100/hydrogen/pkg/kafka"
	"github.com/tiwac100/hydrogen/pkg/logger"
)

// Kafka topics for address mutation events.
var (
	TopicAddressCreated        = pkgkafka.Topic("address", "created")
	TopicAddressUpdated        = pkgkafka.Topic("address", "updated")
	TopicAddressDeleted        = pkgkafka.Topic("address", "deleted")
	TopicAddressDefaultChanged = pkgkafka.Topic("address", "default_changed")
)

// Event types carried in the envelope.
const (
	TypeAddressCreated        = "address.created"
	TypeAddressUpdated        = "address.updated"
	TypeAddressDeleted        = "address.deleted"
	TypeAddressDefaultChanged = "address.default_changed"
)

const (
	AggregateTypeCustomer = "customer"
	SourceStorefront      = "storefront"
)

// AddressEventData is the payload of every address event. It names the fields
// that changed but never carries their values.
type AddressEventData struct {
	AddressID     string   `json:"address_id"`
	ChangedFields []string `json:"changed_fields,omitempty"`
	IsDefault     bool     `json:"is_default"`
}

// Publisher is the subset of pkg/kafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// defaultPublishTimeout bounds how long a request waits on the broker.
const defaultPublishTimeout = 2 * time.Second

// Producer publishes address events to Kafka.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
	timeout   time.Duration
}

// NewProducer creates a new address event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
		timeout:   defaultPublishTimeout,
	}
}

// CustomerRef derives a stable, non-reversible customer reference from an access
// token. It is used as the aggregate ID so one customer's events share a partition.
func CustomerRef(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}

// PublishAddressCreated publishes an address.created event.
func (p *Producer) PublishAddressCreated(ctx context.Context, customerRef string, data AddressEventData) error {
	return p.publish(ctx, TopicAddressCreated, TypeAddressCreated, customerRef, data)
}

// PublishAddressUpdated publishes an address.updated event.
func (p *Producer) PublishAddressUpdated(ctx context.Context, customerRef string, data AddressEventData) error {
	return p.publish(ctx, TopicAddressUpdated, TypeAddressUpdated, customerRef, data)
}

// PublishAddressDeleted publishes an address.deleted event.
func (p *Producer) PublishAddressDeleted(ctx context.Context, customerRef string, data AddressEventData) error {
	return p.publish(ctx, TopicAddressDeleted, TypeAddressDeleted, customerRef, data)
}

// PublishDefaultAddressChanged publishes an address.default_changed event.
func (p *Producer) PublishDefaultAddressChanged(ctx context.Context, customerRef string, data AddressEventData) error {
	data.IsDefault = true
	return p.publish(ctx, TopicAddressDefaultChanged, TypeAddressDefaultChanged, customerRef, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, customerRef string, data AddressEventData) error {
	ev, err := pkgkafka.NewEvent(eventType, customerRef, AggregateTypeCustomer, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}
	if locale := logger.LocaleFromContext(ctx); locale != "" {
		ev.WithMetadata("locale", locale)
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.publisher.Publish(pubCtx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published address event",
		slog.String("event_type", eventType),
		slog.String("address_id", data.AddressID),
	)
	return nil
}
