package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/tidwall/gjson"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Queue hands emails to the emails-to-send topic instead of dialing SMTP in the request path.
type Queue struct {
	publisher Publisher
}

func NewQueue(p Publisher) *Queue {
	return &Queue{publisher: p}
}

func (q *Queue) Enqueue(ctx context.Context, input *lib.SendMailInput) error {
	if len(input.To) == 0 {
		return errors.New("email has no recipients")
	}
	if err := q.publisher.Publish(ctx, lib.TOPIC_EMAILS_TO_SEND, input); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}

func ParseMailPayload(value []byte) (*lib.SendMailInput, error) {
	if !gjson.ValidBytes(value) {
		return nil, errors.New("invalid email payload")
	}
	res := gjson.ParseBytes(value)
	in := &lib.SendMailInput{
		From:     res.Get("from").String(),
		FromName: res.Get("from-name").String(),
		ReplyTo:  res.Get("reply-to").String(),
		Subject:  res.Get("subject").String(),
		Body:     res.Get("body").String(),
		Html:     res.Get("html").Bool(),
	}
	for _, v := range res.Get("to").Array() {
		in.To = append(in.To, v.String())
	}
	for _, v := range res.Get("cc").Array() {
		in.Cc = append(in.Cc, v.String())
	}
	for _, v := range res.Get("bcc").Array() {
		in.Bcc = append(in.Bcc, v.String())
	}
	for _, v := range res.Get("attachments").Array() {
		in.Attachments = append(in.Attachments, v.String())
	}
	if len(in.To) == 0 {
		return nil, errors.New("email has no recipients")
	}
	return in, nil
}

// Deliver is the emails-to-send consumer handler.
func Deliver(send func(*lib.SendMailInput) error) func([]byte) {
	return func(value []byte) {
		in, err := ParseMailPayload(value)
		if err != nil {
			log.Printf("[mailer] dropping message: %s\n", err.Error())
			return
		}
		if err := send(in); err != nil {
			log.Printf("[mailer] could not send %q to %v: %s\n", in.Subject, in.To, err.Error())
		}
	}
}
