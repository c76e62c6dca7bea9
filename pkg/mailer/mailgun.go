package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers a fully rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun sends mail through the Mailgun HTTP API.
type Mailgun struct {
	client *mg.MailgunImpl
	From   string
	Tag    string
}

// NewMailgun builds a sender for domain. apiBase selects the region
// endpoint (mg.APIBaseEU for EU domains); empty keeps the US default.
func NewMailgun(domain, apiKey, apiBase, from string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, From: from, Tag: "evcharge"}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.From, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if m.Tag != "" {
		if err := msg.AddTag(m.Tag); err != nil {
			return err
		}
	}
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(sendCtx, msg)
	return err
}

var _ Sender = (*Mailgun)(nil)
