package services

import (
	"context"
	"strings"

	"github.com/openshelf/openshelf-backend/internal/platform/logger"
	"github.com/openshelf/openshelf-backend/internal/platform/sendgrid"
)

// MailSender is the notification-sender collaborator: best-effort delivery of
// one message to a list of recipients. Failures are reported, never retried
// by callers within the same run.
type MailSender interface {
	SendMail(ctx context.Context, message string, recipients []string) error
}

const overdueMailSubject = "Overdue book loan"

type sendgridMailer struct {
	log    *logger.Logger
	client sendgrid.Client
}

func NewSendGridMailer(baseLog *logger.Logger, client sendgrid.Client) MailSender {
	return &sendgridMailer{
		log:    baseLog.With("service", "SendGridMailer"),
		client: client,
	}
}

func (m *sendgridMailer) SendMail(ctx context.Context, message string, recipients []string) error {
	to := make([]sendgrid.EmailAddress, 0, len(recipients))
	for _, r := range recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		to = append(to, sendgrid.EmailAddress{Email: r})
	}
	if len(to) == 0 {
		return nil
	}

	result, err := m.client.Send(ctx, sendgrid.SendEmailRequest{
		To:      to,
		Subject: overdueMailSubject,
		Text:    message,
	})
	if err != nil {
		return err
	}

	m.log.Debug("mail batch accepted", "status", result.StatusCode, "message_id", result.MessageID, "count", len(to))
	return nil
}

// logMailer stands in when no SendGrid key is configured so the process
// still runs end to end in development.
type logMailer struct {
	log *logger.Logger
}

func NewLogMailer(baseLog *logger.Logger) MailSender {
	return &logMailer{log: baseLog.With("service", "LogMailer")}
}

func (m *logMailer) SendMail(_ context.Context, message string, recipients []string) error {
	m.log.Info("mail delivery skipped (no sender configured)", "message", message, "recipients", len(recipients))
	return nil
}
