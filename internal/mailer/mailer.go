package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"inkwell/internal/model"
)

// ApprovalSubject is the fixed subject line of the approval notification.
const ApprovalSubject = "Your comment has been approved!"

// Mailer sends outbound notification email.
type Mailer interface {
	SendApprovalNotice(ctx context.Context, commenter *model.User, comment *model.Comment, article *model.Article) error
}

// SMTPMailer delivers mail synchronously over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// NewSMTPMailer creates a mailer backed by an SMTP relay.
func NewSMTPMailer(host string, port int, username, password, from string, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		log:    log.With().Str("component", "mailer").Logger(),
	}
}

// SendApprovalNotice emails the commenter that their comment was approved.
// The send blocks the caller; it carries no retry policy.
func (m *SMTPMailer) SendApprovalNotice(ctx context.Context, commenter *model.User, comment *model.Comment, article *model.Article) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", commenter.Email)
	msg.SetHeader("Subject", ApprovalSubject)
	msg.SetBody("text/plain", approvalBody(commenter, comment, article))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send approval notice: %w", err)
	}

	m.log.Info().
		Str("to", commenter.Email).
		Str("comment_id", comment.ID.String()).
		Msg("approval notice sent")
	return nil
}

func approvalBody(commenter *model.User, comment *model.Comment, article *model.Article) string {
	title := article.Title
	if title == "" {
		title = "an article"
	}
	return fmt.Sprintf(
		"Hi %s,\n\nYour comment on %q has been approved and is now visible.\n\n> %s\n",
		commenter.FirstName, title, comment.Body,
	)
}
