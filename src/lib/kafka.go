package lib

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const (
	TOPIC_ORDERS_CAPTURED = "orders-captured"
	TOPIC_ORDERS_FAILED   = "orders-failed"
	TOPIC_EMAILS_TO_SEND  = "emails-to-send"
)

func GetKafkaProducerConfig(clientId string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	}
}

func GetKafkaConsumerConfig(groupId string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	}
}

// KafkaConsume polls topics in the background and passes every message value to handler.
// Polling stops on a broker error or when ctx is done.
func KafkaConsume(ctx context.Context, groupId string, topics []string, handler func(value []byte)) error {
	log.Printf("[kafka] initializing consumer %s for %v\n", groupId, topics)
	consumer, err := kafka.NewConsumer(GetKafkaConsumerConfig(groupId))
	if err != nil {
		log.Printf("[kafka] error creating consumer: %s\n", err.Error())
		return err
	}
	if err := consumer.SubscribeTopics(topics, nil); err != nil {
		log.Printf("[kafka] error subscribing: %s\n", err.Error())
		consumer.Close()
		return err
	}
	go func() {
		defer consumer.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch e := consumer.Poll(100).(type) {
			case *kafka.Message:
				handler(e.Value)
			case kafka.Error:
				log.Printf("[kafka] consumer %s stopped: %v\n", groupId, e)
				return
			}
		}
	}()
	return nil
}

func KafkaProduceMessage(clientId string, topic string, payload any) error {
	p, err := kafka.NewProducer(GetKafkaProducerConfig(clientId))
	if err != nil {
		log.Printf("[kafka] error creating producer: %s\n", err.Error())
		return err
	}
	defer p.Close()

	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("[kafka] error producing to %s: %s\n", topic, err.Error())
		return err
	}
	p.Flush(5000)
	return nil
}

func KafkaCreateTopics(topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	defer a.Close()
	topicsDef := []kafka.TopicSpecification{}
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     10,
			ReplicationFactor: 1,
		})
	}
	result, err := a.CreateTopics(context.Background(), topicsDef)
	if err != nil {
		log.Printf("Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}

// KafkaPublisher publishes order lifecycle events.
type KafkaPublisher struct {
	ClientID string
	produce  func(clientId, topic string, payload any) error
}

func NewKafkaPublisher(clientId string) *KafkaPublisher {
	return &KafkaPublisher{ClientID: clientId, produce: KafkaProduceMessage}
}

func (k *KafkaPublisher) Publish(ctx context.Context, topic string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.produce(k.ClientID, topic, payload)
}
