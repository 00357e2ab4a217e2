package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer satisfies domain.Mailer by logging the activation code instead
// of delivering it. Real template rendering and SMTP delivery live in an
// external service; this keeps development environments self-contained.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendActivationMail(ctx context.Context, email, name, code string) error {
	m.log.Info("activation mail",
		zap.String("email", email),
		zap.String("name", name),
		zap.String("code", code),
	)
	return nil
}
