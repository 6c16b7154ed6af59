//go:generate mockery --name Mailer --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"fmt"
	"net/smtp"

	"go_feedback_hub/internal/config"
	"go_feedback_hub/internal/middleware"
)

// Mailer はメール送信の抽象。送信はすべてベストエフォートで、
// 呼び出し側はエラーをログに残すだけで握りつぶす。
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer は設定に応じたMailer実装を返します
func NewMailer(cfg *config.Config) Mailer {
	switch cfg.Mailer.Provider {
	case "smtp":
		return &SmtpMailer{cfg: &cfg.SMTP}
	case "ses":
		return NewSESMailer(cfg)
	default:
		return &LogMailer{}
	}
}

// --- LogMailer ---
// 開発・テスト用。実際には送信せずログに出すだけ。
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Sending Email (LogMailer) ---", "to", to, "subject", subject, "body", body)
	return nil
}

// --- SmtpMailer ---
type SmtpMailer struct {
	cfg *config.SMTPConfig
}

func (m *SmtpMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	logger.Debug("Attempting to send email via SMTP",
		"smtp_addr", addr,
		"from", m.cfg.From,
		"to", to,
	)

	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	// ログインが設定されていれば認証付きで送る
	if m.cfg.Login != "" {
		auth := smtp.PlainAuth("", m.cfg.Login, m.cfg.Password, m.cfg.Host)
		if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
			logger.Error("Failed to send email via SMTP", "error", err, "addr", addr)
			return err
		}
		return nil
	}

	// 認証なしのリレー (ローカル開発用のメールサーバーなど)
	c, err := smtp.Dial(addr)
	if err != nil {
		logger.Error("Failed to connect to SMTP server", "error", err, "addr", addr)
		return err
	}
	defer c.Close()

	if err = c.Mail(m.cfg.From); err != nil {
		logger.Error("Failed to set MAIL FROM", "error", err, "from", m.cfg.From)
		return err
	}
	if err = c.Rcpt(to); err != nil {
		logger.Error("Failed to set RCPT TO", "error", err, "to", to)
		return err
	}

	wc, err := c.Data()
	if err != nil {
		logger.Error("Failed to open data writer", "error", err)
		return err
	}
	if _, err = wc.Write(msg); err != nil {
		wc.Close()
		logger.Error("Failed to write email body", "error", err)
		return err
	}
	if err = wc.Close(); err != nil {
		logger.Error("Failed to close data writer", "error", err)
		return err
	}

	return c.Quit()
}
