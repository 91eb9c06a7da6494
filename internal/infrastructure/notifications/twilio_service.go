package notifications

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// TwilioGateway implements domain.DeliveryGateway. SMS goes through Twilio;
// email and chat delivery are carried by external collaborators that are
// not wired in yet and fall back to log-only delivery.
type TwilioGateway struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zap.Logger
}

// NewTwilioGateway creates a new Twilio-backed delivery gateway
func NewTwilioGateway(accountSID, authToken, fromNumber string, logger *zap.Logger) domain.DeliveryGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioGateway{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// Send implements domain.DeliveryGateway
func (g *TwilioGateway) Send(ctx context.Context, destination string, channel domain.DeliveryChannel, payload domain.CredentialPayload) error {
	switch channel {
	case domain.ChannelSMS:
		return g.sendSMS(destination, payload)
	case domain.ChannelEmail, domain.ChannelChat:
		g.logger.Info("mock delivery",
			zap.String("channel", string(channel)),
			zap.String("destination", destination),
			zap.Time("valid_until", payload.ValidUntil))
		return nil
	default:
		return domain.ErrUnknownChannel
	}
}

func (g *TwilioGateway) sendSMS(to string, payload domain.CredentialPayload) error {
	message := fmt.Sprintf("Your access passcode is: %s. Valid until %s.",
		payload.CodeValue, payload.ValidUntil.Format("Jan 2 15:04"))

	// If credentials are not configured, log instead of sending
	if g.fromNumber == "" {
		g.logger.Info("mock sms delivery", zap.String("to", to))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.fromNumber)
	params.SetBody(message)

	if _, err := g.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
