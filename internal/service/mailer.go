package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Mail is a plain text message.
type Mail struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers outgoing mail.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer writes mail to the log instead of delivering it. It is the
// default transport; deployments that deliver real mail plug in their own.
type LogMailer struct {
	Log logrus.FieldLogger
}

func (m LogMailer) Send(_ context.Context, mail Mail) error {
	log := m.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"from":    mail.From,
		"to":      mail.To,
		"subject": mail.Subject,
	}).Info(mail.Body)
	return nil
}
