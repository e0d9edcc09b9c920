package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeSQS struct {
	messages []sqstypes.Message
	deleted  []string
}

func (f *fakeSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/" + aws.ToString(params.QueueName))}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	out := &sqs.ReceiveMessageOutput{Messages: f.messages}
	f.messages = nil
	return out, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeSES struct {
	input *ses.SendRawEmailInput
}

func (f *fakeSES) SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
	f.input = params
	return &ses.SendRawEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestTopicArn(t *testing.T) {
	t.Setenv("AWS_SNS_TOPIC_PREFIX", "arn:aws:sns:eu-south-1:123456789012:")
	assert.Equal(t, "arn:aws:sns:eu-south-1:123456789012:orders-captured", TopicArn("orders-captured"))
	assert.True(t, Enabled())
}

func TestSNSPublisher(t *testing.T) {
	client := &fakeSNS{}
	p := &SNSPublisher{client: client, arn: func(topic string) string { return "arn:" + topic }}

	require.NoError(t, p.Publish(context.Background(), "orders-captured", map[string]any{"orderId": "pi_1"}))

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "arn:orders-captured", aws.ToString(in.TopicArn))
	assert.Equal(t, "pi_1", gjson.Get(aws.ToString(in.Message), "orderId").String())
	assert.Equal(t, "orders-captured", aws.ToString(in.MessageAttributes["topic"].StringValue))
}

func TestSNSPublisherError(t *testing.T) {
	client := &fakeSNS{err: errors.New("throttled")}
	p := &SNSPublisher{client: client, arn: TopicArn}

	err := p.Publish(context.Background(), "orders-failed", map[string]any{})
	assert.ErrorContains(t, err, "throttled")
}

func TestSQSConsumerPoll(t *testing.T) {
	client := &fakeSQS{messages: []sqstypes.Message{
		{Body: aws.String(`{"to":["ada@example.org"]}`), ReceiptHandle: aws.String("r1")},
		{Body: aws.String(`{"Type":"Notification","Message":"{\"to\":[\"bob@example.org\"]}"}`), ReceiptHandle: aws.String("r2")},
	}}
	var got []string
	c := &SQSConsumer{Name: "emails-to-send", client: client, handler: func(b []byte) {
		got = append(got, gjson.GetBytes(b, "to.0").String())
	}}

	n, err := c.poll(context.Background(), aws.String("https://sqs.local/emails-to-send"))

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"ada@example.org", "bob@example.org"}, got)
	assert.Equal(t, []string{"r1", "r2"}, client.deleted)
}

func TestUnwrapNotificationLeavesPlainBodies(t *testing.T) {
	body := []byte(`{"Type":"Other","Message":"x"}`)
	assert.Equal(t, body, unwrapNotification(body))
}

func TestSESSender(t *testing.T) {
	client := &fakeSES{}
	s := &SESSender{client: client}

	err := s.Send(&lib.SendMailInput{
		From:    "noreply@example.org",
		To:      []string{"ada@example.org"},
		Bcc:     []string{"audit@example.org"},
		Subject: "Your tickets",
		Body:    "See you there",
	})

	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, []string{"ada@example.org", "audit@example.org"}, client.input.Destinations)
	assert.Contains(t, string(client.input.RawMessage.Data), "Subject: Your tickets")
}
