package mailer

import (
	"errors"
	"time"

	tpl "github.com/oksasatya/evcharge/pkg/mailer/templates"
)

var ErrJobNoRecipient = errors.New("email job has no recipient")

// EmailJob is the queued form of an email. Either Template (+Data) or
// Subject with Text/HTML is set. Jobs whose ExpiresAt has passed are
// discarded by the worker.
type EmailJob struct {
	To        string         `json:"to"`
	Subject   string         `json:"subject,omitempty"`
	Text      string         `json:"text,omitempty"`
	HTML      string         `json:"html,omitempty"`
	Template  string         `json:"template,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

func (j EmailJob) Expired(now time.Time) bool {
	return j.ExpiresAt != nil && !now.Before(*j.ExpiresAt)
}

// Content resolves the subject and bodies, rendering the template if set.
func (j EmailJob) Content() (subject, text, html string, err error) {
	if j.To == "" {
		return "", "", "", ErrJobNoRecipient
	}
	if j.Template == "" {
		return j.Subject, j.Text, j.HTML, nil
	}
	return tpl.Render(j.Template, j.Data)
}
