// Package notify sends the transactional e-mails of the claims workflow:
// acknowledgement of a new claim, status changes and requests for further
// documents.
package notify

import (
	"context"

	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/config"
)

// Message is one plain-text e-mail.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender hands a message to an e-mail provider. The boolean reports whether
// the provider accepted it; a false result always comes with an error
// wrapping common.ErrorNotification. Senders do not retry.
type Sender interface {
	Send(ctx context.Context, msg Message) (bool, error)
}

// LogSender only logs messages. Used for local development and tests.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "notify.log")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) (bool, error) {
	s.logger.Info(ctx, "email (not sent)", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return true, nil
}

// NewSender picks the transport named by cfg.EmailDriver.
func NewSender(cfg *config.Config, logger logging.Logger) Sender {
	if cfg.EmailDriver == config.EmailDriverLog {
		return NewLogSender(logger)
	}
	return NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
}
