package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetMaxTickets(t *testing.T) {
	t.Setenv("MAX_TICKETS", "")
	assert.Equal(t, DEFAULT_MAX_TICKETS, GetMaxTickets())

	t.Setenv("MAX_TICKETS", "8")
	assert.Equal(t, 8, GetMaxTickets())

	for _, v := range []string{"0", "-2", "many", "2.5"} {
		t.Setenv("MAX_TICKETS", v)
		assert.Equal(t, DEFAULT_MAX_TICKETS, GetMaxTickets(), "MAX_TICKETS=%q", v)
	}
}

func TestGetMembershipFee(t *testing.T) {
	t.Setenv("MEMBERSHIP_FEE", "")
	assert.Equal(t, DEFAULT_MEMBERSHIP_FEE, GetMembershipFee())

	t.Setenv("MEMBERSHIP_FEE", "12.5")
	assert.Equal(t, 12.5, GetMembershipFee())

	t.Setenv("MEMBERSHIP_FEE", "-1")
	assert.Equal(t, DEFAULT_MEMBERSHIP_FEE, GetMembershipFee())
}

func TestDurations(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "")
	assert.Equal(t, DEFAULT_REQUEST_TIMEOUT, GetRequestTimeout())

	t.Setenv("REQUEST_TIMEOUT", "3s")
	assert.Equal(t, 3*time.Second, GetRequestTimeout())

	t.Setenv("ORDER_TTL", "nonsense")
	assert.Equal(t, time.Hour, GetOrderTTL())
}

func TestFunctionsURLTrimsSlash(t *testing.T) {
	t.Setenv("FUNCTIONS_URL", "https://functions.example.org/api/")
	assert.Equal(t, "https://functions.example.org/api", GetFunctionsURL())
}

func TestGetMailQueue(t *testing.T) {
	t.Setenv("AWS_MAIL_QUEUE", "")
	assert.Equal(t, "emails-to-send", GetMailQueue())

	t.Setenv("AWS_MAIL_QUEUE", "tickets-mail")
	assert.Equal(t, "tickets-mail", GetMailQueue())
}
