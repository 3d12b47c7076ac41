package account

import "context"

// LogNotifier records confirmation notifications in the log instead of
// delivering them. Deployments wire a real mailer behind the Notifier
// interface; delivery mechanics live outside this module.
type LogNotifier struct {
	logger Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger Logger) *LogNotifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendConfirmation(ctx context.Context, user *User, token string) error {
	n.logger.Info("confirmation token for %s: %s", user.Email, token)
	return nil
}
