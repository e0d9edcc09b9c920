package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes to one SNS topic per broker topic name.
type SNSPublisher struct {
	client snsAPI
	arn    func(topic string) string
}

func NewSNSPublisher(cfg aws.Config) *SNSPublisher {
	return &SNSPublisher{client: sns.NewFromConfig(cfg), arn: TopicArn}
}

func (p *SNSPublisher) Publish(ctx context.Context, topic string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.arn(topic)),
		Message:  aws.String(string(b)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"topic": {DataType: aws.String("String"), StringValue: aws.String(topic)},
		},
	})
	if err != nil {
		log.Printf("Error publishing to topic [%s]: %s\n", topic, err.Error())
		return fmt.Errorf("sns publish %s: %w", topic, err)
	}
	log.Printf("[sns] published %s to %s\n", aws.ToString(out.MessageId), topic)
	return nil
}
