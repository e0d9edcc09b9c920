package lib

import (
	"os"

	"github.com/pusher/pusher-http-go/v5"
)

const CHECKOUT_STATE_EVENT = "state-changed"

var pusherClient *pusher.Client

func GetPusherClient() *pusher.Client {
	if pusherClient != nil {
		return pusherClient
	}
	pusherClient = &pusher.Client{
		AppID:   os.Getenv("PUSHER_APP_ID"),
		Key:     os.Getenv("PUSHER_KEY"),
		Secret:  os.Getenv("PUSHER_SECRET"),
		Cluster: os.Getenv("PUSHER_CLUSTER"),
		Secure:  true,
	}
	return pusherClient
}

type triggerer interface {
	Trigger(channel string, eventName string, data interface{}) error
}

// CheckoutBroadcaster pushes checkout state changes to the buyer's page.
type CheckoutBroadcaster struct {
	client triggerer
}

func NewCheckoutBroadcaster(c *pusher.Client) *CheckoutBroadcaster {
	return &CheckoutBroadcaster{client: c}
}

func CheckoutChannel(sessionID string) string {
	return "checkout-" + sessionID
}

func (b *CheckoutBroadcaster) Broadcast(sessionID string, payload any) error {
	return b.client.Trigger(CheckoutChannel(sessionID), CHECKOUT_STATE_EVENT, payload)
}
