package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"lodging/src/lib"
	"lodging/src/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snsTypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// KafkaNotifier publishes lifecycle events keyed by reservation id, so all
// events of one reservation land on one partition in order.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaNotifier(producer *kafka.Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event services.Event) error {
	key := fmt.Sprintf("reservation-%d", event.ReservationID)
	return lib.KafkaProduceMessage(ctx, n.producer, n.topic, key, event)
}

type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSNotifier struct {
	client   SNSPublisher
	topicArn string
}

func NewSNSNotifier(client SNSPublisher, topicArn string) *SNSNotifier {
	return &SNSNotifier{client: client, topicArn: topicArn}
}

func (n *SNSNotifier) Notify(ctx context.Context, event services.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snsTypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", event.Type, err)
	}
	return nil
}

// LogNotifier writes events to the structured log. It is the sink of last
// resort when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event services.Event) error {
	n.logger.InfoContext(ctx, "event",
		"type", event.Type,
		"reservation_id", event.ReservationID,
		"property_id", event.PropertyID,
		"state", event.State,
	)
	return nil
}

// Fanout delivers every event to all sinks and joins their errors.
type Fanout []services.Notifier

func (f Fanout) Notify(ctx context.Context, event services.Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
