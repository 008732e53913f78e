package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

// Options configures the texts a Notifier renders.
type Options struct {
	PortalBaseURL string
	Team          string
}

// Notifier renders the workflow e-mails and passes them to a Sender.
type Notifier struct {
	sender    Sender
	templates map[string]emailTemplate
	opts      Options
	logger    logging.Logger
	now       func() time.Time
}

// NewNotifier uses the built-in templates.
func NewNotifier(sender Sender, opts Options, logger logging.Logger) (*Notifier, error) {
	return NewNotifierWithTemplates(sender, opts, logger, defaultTemplates)
}

// NewNotifierWithTemplates uses a YAML template set in the format of the
// built-in templates.yaml.
func NewNotifierWithTemplates(sender Sender, opts Options, logger logging.Logger, templates []byte) (*Notifier, error) {
	t, err := parseTemplates(templates)
	if err != nil {
		return nil, err
	}
	if opts.Team == "" {
		opts.Team = "The Claims Team"
	}
	opts.PortalBaseURL = strings.TrimRight(opts.PortalBaseURL, "/")

	return &Notifier{
		sender:    sender,
		templates: t,
		opts:      opts,
		logger:    logger.With("module", "notify"),
		now:       time.Now,
	}, nil
}

type claimData struct {
	ClaimID        string
	FullName       string
	CoverageType   string
	Status         models.ClaimStatus
	PreviousStatus models.ClaimStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Reason         string
	Documents      []string
	Note           string
	PortalURL      string
	Team           string
}

func (n *Notifier) claimData(c *models.Claim) claimData {
	return claimData{
		ClaimID:      c.ClaimID,
		FullName:     c.FullName,
		CoverageType: c.CoverageType,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		PortalURL:    n.opts.PortalBaseURL + "/claims/" + c.ClaimID,
		Team:         n.opts.Team,
	}
}

// ClaimReceived acknowledges a newly created claim.
func (n *Notifier) ClaimReceived(ctx context.Context, c *models.Claim) (bool, error) {
	return n.send(ctx, templateClaimReceived, c.Email, c.FullName, n.claimData(c))
}

// StatusChanged tells the claimant about a transition from previous to the
// claim's current status.
func (n *Notifier) StatusChanged(ctx context.Context, c *models.Claim, previous models.ClaimStatus, reason *string) (bool, error) {
	d := n.claimData(c)
	d.PreviousStatus = previous
	if reason != nil {
		d.Reason = strings.TrimSpace(*reason)
	}
	return n.send(ctx, templateStatusChanged, c.Email, c.FullName, d)
}

// DocumentsRequested asks the claimant for the listed documents.
func (n *Notifier) DocumentsRequested(ctx context.Context, c *models.Claim, documents []string, note *string) (bool, error) {
	d := n.claimData(c)
	for _, doc := range documents {
		if doc = strings.TrimSpace(doc); doc != "" {
			d.Documents = append(d.Documents, doc)
		}
	}
	if note != nil {
		d.Note = strings.TrimSpace(*note)
	}
	return n.send(ctx, templateDocumentsRequested, c.Email, c.FullName, d)
}

// Test sends a delivery check message to address.
func (n *Notifier) Test(ctx context.Context, address string) (bool, error) {
	return n.send(ctx, templateTest, address, "", struct {
		SentAt time.Time
		Team   string
	}{SentAt: n.now(), Team: n.opts.Team})
}

func (n *Notifier) send(ctx context.Context, name, to, toName string, data any) (bool, error) {
	subject, body, err := n.templates[name].render(data)
	if err != nil {
		return false, fmt.Errorf("%w: render %s: %w", common.ErrorNotification, name, err)
	}

	ok, err := n.sender.Send(ctx, Message{To: to, ToName: toName, Subject: subject, Body: body})
	if err != nil {
		n.logger.Warn(ctx, "email not delivered", "template", name, "to", to, "error", err)
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s rejected", common.ErrorNotification, name)
	}
	n.logger.Debug(ctx, "email sent", "template", name, "to", to)
	return true, nil
}
