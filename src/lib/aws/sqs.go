package aws

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/tidwall/gjson"
)

type sqsAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSConsumer struct {
	Name    string
	client  sqsAPI
	handler func([]byte)
	backoff time.Duration
}

func NewSQSConsumer(cfg aws.Config, queue string, handler func([]byte)) *SQSConsumer {
	return &SQSConsumer{
		Name:    queue,
		client:  sqs.NewFromConfig(cfg),
		handler: handler,
		backoff: 5 * time.Second,
	}
}

// Listen resolves the queue and polls it until ctx is done.
func (s *SQSConsumer) Listen(ctx context.Context) error {
	qurl, err := s.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(s.Name),
	})
	if err != nil {
		return fmt.Errorf("queue url for %s: %w", s.Name, err)
	}
	log.Printf("%s: Listening for messages...", s.Name)
	go func() {
		for ctx.Err() == nil {
			if _, err := s.poll(ctx, qurl.QueueUrl); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
				select {
				case <-ctx.Done():
				case <-time.After(s.backoff):
				}
			}
		}
	}()
	return nil
}

func (s *SQSConsumer) poll(ctx context.Context, qurl *string) (int, error) {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            qurl,
		WaitTimeSeconds:     20,
		MaxNumberOfMessages: 10,
	})
	if err != nil {
		return 0, err
	}
	for _, m := range output.Messages {
		s.handler(unwrapNotification([]byte(aws.ToString(m.Body))))
		_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      qurl,
			ReceiptHandle: m.ReceiptHandle,
		})
		if err != nil {
			log.Printf("Error deleting message from queue: %s\n", err.Error())
		}
	}
	return len(output.Messages), nil
}

// unwrapNotification returns the inner message of an SNS envelope, or body unchanged.
func unwrapNotification(body []byte) []byte {
	if gjson.GetBytes(body, "Type").String() != "Notification" {
		return body
	}
	if msg := gjson.GetBytes(body, "Message"); msg.Exists() {
		return []byte(msg.String())
	}
	return body
}
