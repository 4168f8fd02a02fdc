// -----------------------------------------------------------------------
// Email Channel - SMTP delivery of result summaries
// -----------------------------------------------------------------------

package notify

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/models"
)

// EmailChannel delivers result summaries over SMTP. The recipient comes
// from the job request when explicit, otherwise from the EMAIL_TO
// environment variable (falling back to the configured default), read at
// send time.
type EmailChannel struct {
	config common.NotifyConfig
	logger arbor.ILogger
}

// NewEmailChannel creates the email notification channel
func NewEmailChannel(config common.NotifyConfig, logger arbor.ILogger) *EmailChannel {
	return &EmailChannel{
		config: config,
		logger: logger,
	}
}

func (c *EmailChannel) Name() string { return "email" }

// Resolve normalizes the email configuration to a concrete recipient list
func (c *EmailChannel) Resolve(config models.NotificationConfig) (string, bool, error) {
	switch config.Email.Mode {
	case models.ChannelExplicit:
		recipients := strings.Join(config.Email.Recipients, ",")
		if recipients == "" {
			return "", true, fmt.Errorf("no recipients defined")
		}
		return recipients, true, nil
	case models.ChannelEnvDefault:
		recipients := os.Getenv("EMAIL_TO")
		if recipients == "" {
			recipients = c.config.EmailTo
		}
		if recipients == "" {
			return "", true, fmt.Errorf("no recipients resolved (EMAIL_TO not set)")
		}
		return recipients, true, nil
	default:
		return "", false, nil
	}
}

// Send delivers the summary email to the resolved recipients
func (c *EmailChannel) Send(ctx context.Context, target string, results []models.ExecutionResult, summary models.Summary, jobID string) error {
	smtpCfg := c.config.SMTP
	if smtpCfg.Host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if smtpCfg.Username == "" || smtpCfg.Password == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}

	from := smtpCfg.From
	if from == "" {
		from = smtpCfg.Username
	}

	msg := buildMessage(smtpCfg.FromName, from, target,
		emailSubject(summary),
		htmlEmail(results, summary, jobID),
		textEmail(results, summary, jobID))

	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)
	auth := smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)

	recipients := splitRecipients(target)
	var err error
	if smtpCfg.UseTLS && smtpCfg.Port == 465 {
		err = c.sendWithTLS(addr, smtpCfg.Host, auth, from, recipients, msg)
	} else {
		err = c.sendWithSTARTTLS(addr, smtpCfg.Host, auth, from, recipients, msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().Str("to", target).Str("job_id", jobID).Msg("Result email delivered")
	return nil
}

// buildMessage assembles a multipart/alternative MIME message with plain
// text and HTML parts
func buildMessage(fromName, from, to, subject, htmlBody, textBody string) string {
	boundary := generateBoundary()

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	msg.WriteString(encodeBase64WithLineBreaks(textBody))
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	msg.WriteString(encodeBase64WithLineBreaks(htmlBody))
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	return msg.String()
}

// sendWithTLS sends over an implicit TLS connection (port 465)
func (c *EmailChannel) sendWithTLS(addr, host string, auth smtp.Auth, from string, to []string, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("TLS connection failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("SMTP client creation failed: %w", err)
	}
	defer client.Close()

	return c.transact(client, auth, from, to, msg)
}

// sendWithSTARTTLS sends over a plain connection upgraded via STARTTLS
// (port 587)
func (c *EmailChannel) sendWithSTARTTLS(addr, host string, auth smtp.Auth, from string, to []string, msg string) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("SMTP connection failed: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	return c.transact(client, auth, from, to, msg)
}

func (c *EmailChannel) transact(client *smtp.Client, auth smtp.Auth, from string, to []string, msg string) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s failed: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("message write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message close failed: %w", err)
	}
	return client.Quit()
}

// generateBoundary creates a random MIME boundary marker
func generateBoundary() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return "herrold-" + base64.RawURLEncoding.EncodeToString(buf)
}

// encodeBase64WithLineBreaks encodes content in RFC 2045 compliant 76-char
// lines
func encodeBase64WithLineBreaks(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	var b strings.Builder
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
		b.WriteString("\r\n")
	}
	return b.String()
}
