package email

import (
	"context"
	"fmt"
	"html"

	"github.com/zfogg/blogicum/internal/logger"
	"go.uber.org/zap"
)

// Sender delivers account emails
type Sender interface {
	SendPasswordReset(ctx context.Context, toEmail, username, resetURL string) error
}

// Ensure both backends implement Sender
var (
	_ Sender = (*SESSender)(nil)
	_ Sender = (*LogSender)(nil)
)

// Message is a rendered email
type Message struct {
	Subject string
	HTML    string
	Text    string
}

func passwordResetMessage(username, resetURL string) Message {
	safeURL := html.EscapeString(resetURL)
	safeName := html.EscapeString(username)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body>
	<h1>Password reset on Blogicum</h1>
	<p>Hello, %s!</p>
	<p>Someone asked to reset the password for your account. Follow the link below to choose a new one. The link expires in 1 hour.</p>
	<p><a href="%s">%s</a></p>
	<p>If you did not request a reset, ignore this email.</p>
</body>
</html>`, safeName, safeURL, safeURL)

	textBody := fmt.Sprintf(`Password reset on Blogicum

Hello, %s!

Someone asked to reset the password for your account. Follow the link below to choose a new one. The link expires in 1 hour.

%s

If you did not request a reset, ignore this email.
`, username, resetURL)

	return Message{
		Subject: "Password reset on Blogicum",
		HTML:    htmlBody,
		Text:    textBody,
	}
}

// LogSender writes emails to the log instead of sending them
type LogSender struct{}

// NewLogSender creates a log-only sender for development
func NewLogSender() *LogSender {
	return &LogSender{}
}

// SendPasswordReset logs the reset link
func (l *LogSender) SendPasswordReset(_ context.Context, toEmail, username, resetURL string) error {
	msg := passwordResetMessage(username, resetURL)
	logger.Log.Info("Email (log backend)",
		zap.String("to", toEmail),
		zap.String("subject", msg.Subject),
		zap.String("reset_url", resetURL),
	)
	return nil
}
