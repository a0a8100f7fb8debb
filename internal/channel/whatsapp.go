package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"wishbook/internal/logger"
	"wishbook/internal/render"
)

// WhatsAppAdapter sends through Twilio. Without account credentials it runs
// in mock mode: the payload is logged and the send reports success.
type WhatsAppAdapter struct {
	AccountSID string
	AuthToken  string
	From       string
}

func (a *WhatsAppAdapter) Send(ctx context.Context, msg render.RenderedMessage, destination string) (Result, error) {
	if a.AccountSID == "" || a.AuthToken == "" {
		logger.Info("[MOCK] whatsapp send", "to", destination, "text", msg.Text)
		return Sent, nil
	}

	if !strings.HasPrefix(destination, "whatsapp:") {
		destination = "whatsapp:" + destination
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: a.AccountSID,
		Password: a.AuthToken,
	})

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(a.From)
	params.SetTo(destination)
	params.SetBody(msg.Text)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return Failed, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	logger.Info("whatsapp sent", "to", destination, "sid", sid)
	return Sent, nil
}
