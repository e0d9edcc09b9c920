package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisherFunc func(ctx context.Context, topic string, payload any) error

func (f publisherFunc) Publish(ctx context.Context, topic string, payload any) error {
	return f(ctx, topic, payload)
}

func TestEnqueueRoundTrip(t *testing.T) {
	var raw []byte
	q := NewQueue(publisherFunc(func(ctx context.Context, topic string, payload any) error {
		assert.Equal(t, lib.TOPIC_EMAILS_TO_SEND, topic)
		b, err := json.Marshal(payload)
		raw = b
		return err
	}))

	in := &lib.SendMailInput{
		From:        "noreply@example.org",
		To:          []string{"ada@example.org", "grace@example.org"},
		Subject:     "Tickets",
		Body:        "hello",
		Html:        true,
		Attachments: []string{"/tmp/ORD1-1.jpeg"},
	}
	require.NoError(t, q.Enqueue(context.Background(), in))

	parsed, err := ParseMailPayload(raw)
	require.NoError(t, err)
	assert.Equal(t, in, parsed)
}

func TestEnqueueErrors(t *testing.T) {
	q := NewQueue(publisherFunc(func(ctx context.Context, topic string, payload any) error {
		return errors.New("broker down")
	}))

	assert.Error(t, q.Enqueue(context.Background(), &lib.SendMailInput{}))
	assert.ErrorContains(t, q.Enqueue(context.Background(), &lib.SendMailInput{To: []string{"a@b.c"}}), "broker down")
}

func TestDeliver(t *testing.T) {
	var sent []*lib.SendMailInput
	handle := Deliver(func(in *lib.SendMailInput) error {
		sent = append(sent, in)
		return nil
	})

	handle([]byte(`not json`))
	handle([]byte(`{"to":[]}`))
	handle([]byte(`{"to":["ada@example.org"],"subject":"Hi"}`))

	require.Len(t, sent, 1)
	assert.Equal(t, "Hi", sent[0].Subject)
}
