package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage(&SendMailInput{
		From:     "noreply@example.org",
		FromName: "Box Office",
		To:       []string{"ada@example.org"},
		Subject:  "Your tickets",
		Body:     "<p>See you there</p>",
		Html:     true,
	})

	require.NoError(t, err)
	require.Len(t, msg.GetTo(), 1)
	assert.Equal(t, "ada@example.org", msg.GetTo()[0].Address)
	assert.Equal(t, []string{"Your tickets"}, msg.GetGenHeader(mail.HeaderSubject))
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	_, err := BuildMessage(&SendMailInput{To: []string{"not an address"}})
	assert.Error(t, err)
}
