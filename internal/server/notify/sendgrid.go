package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers messages through the SendGrid v3 mail API.
type SendGridSender struct {
	client mailClient
	from   *mail.Email
}

// NewSendGridSender builds a sender for apiKey. fromAddress and fromName
// identify the sender on every message.
func NewSendGridSender(apiKey, fromAddress, fromName string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// Send reports success only for a 2xx answer; SendGrid answers 202 Accepted
// when a message is queued.
func (s *SendGridSender) Send(ctx context.Context, msg Message) (bool, error) {
	to := mail.NewEmail(msg.ToName, msg.To)
	m := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Body, "")

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return false, fmt.Errorf("%w: sendgrid: %w", common.ErrorNotification, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: sendgrid status %d: %s", common.ErrorNotification, resp.StatusCode, resp.Body)
	}
	return true, nil
}
