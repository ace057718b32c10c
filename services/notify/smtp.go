package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       []string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && len(c.To) > 0
}

type SMTPService struct {
	config SMTPConfig
}

func NewSMTPService(config SMTPConfig) *SMTPService {
	return &SMTPService{
		config: config,
	}
}

func (s *SMTPService) SendReport(ctx context.Context, report Report) error {
	if report.IsEmpty() {
		return nil
	}
	body, err := renderReport(report)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return s.SendEmail(ctx, report.Title, body)
}

func (s *SMTPService) SendEmail(ctx context.Context, subject, body string) error {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.config.Host, s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, to := range s.config.To {
		if err = client.Rcpt(to); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to create email body writer: %w", err)
	}

	if _, err = w.Write([]byte(buildMessage(s.config.From, s.config.To, subject, body))); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close email body writer: %w", err)
	}

	return client.Quit()
}

func buildMessage(from string, to []string, subject, body string) string {
	headers := fmt.Sprintf(
		"From: IAP Backoffice <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n",
		from, strings.Join(to, ", "), subject,
	)
	return headers + body
}

// LogSender is used when SMTP is not configured: reports only go to the log.
type LogSender struct {
	Logf func(template string, args ...interface{})
}

func (l LogSender) SendReport(_ context.Context, report Report) error {
	if report.IsEmpty() {
		return nil
	}
	for _, section := range report.Sections {
		l.Logf("%s :: %s :: %s", report.Title, section.Heading, strings.Join(section.Lines, " | "))
	}
	return nil
}
