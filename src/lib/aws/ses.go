package aws

import (
	"bytes"
	"context"
	"log"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESSender delivers the same MIME message the SMTP path builds, attachments included.
type SESSender struct {
	client sesAPI
}

func NewSESSender(cfg aws.Config) *SESSender {
	return &SESSender{client: ses.NewFromConfig(cfg)}
}

func (s *SESSender) Send(in *lib.SendMailInput) error {
	msg, err := lib.BuildMessage(in)
	if err != nil {
		return err
	}
	var raw bytes.Buffer
	if _, err := msg.WriteTo(&raw); err != nil {
		return err
	}
	destinations := make([]string, 0, len(in.To)+len(in.Cc)+len(in.Bcc))
	destinations = append(destinations, in.To...)
	destinations = append(destinations, in.Cc...)
	destinations = append(destinations, in.Bcc...)
	out, err := s.client.SendRawEmail(context.TODO(), &ses.SendRawEmailInput{
		Destinations: destinations,
		RawMessage:   &sestypes.RawMessage{Data: raw.Bytes()},
	})
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return err
	}
	log.Printf("Sent email with id: %s\n", aws.ToString(out.MessageId))
	return nil
}
