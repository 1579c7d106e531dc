// internal/service/email/service.go
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"storefront-crm/internal/domain/tenant"
)

// Config holds the SMTP relay settings. Secure selects implicit TLS (port
// 465); otherwise STARTTLS is negotiated by net/smtp.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	Secure   bool
	// AcceptURL is where invitees redeem their token, e.g.
	// https://app.example.com/invites/accept
	AcceptURL string
}

// EmailSender handles outgoing emails via SMTP.
type EmailSender struct {
	cfg     Config
	deliver func(to string, msg []byte) error
}

func NewEmailSender(cfg Config) *EmailSender {
	e := &EmailSender{cfg: cfg}
	e.deliver = e.smtpDeliver
	return e
}

var inviteTmpl = template.Must(template.New("invite").Parse(`
<p>You have been invited to join <strong>{{.Store}}</strong> as {{.Role}}.</p>
<p>Your invite code is <code>{{.Token}}</code>.</p>
{{if .URL}}<p><a class="button" href="{{.URL}}?token={{.Token}}">Accept invitation</a></p>{{end}}
<p>If you were not expecting this, you can ignore this email.</p>
`))

// SendInvite emails a store invitation with its one-time token.
func (e *EmailSender) SendInvite(to, storeName, inviteToken string, role tenant.Role) error {
	var body bytes.Buffer
	err := inviteTmpl.Execute(&body, struct {
		Store, Token, URL string
		Role              tenant.Role
	}{storeName, inviteToken, e.cfg.AcceptURL, role})
	if err != nil {
		return fmt.Errorf("render invite: %w", err)
	}
	return e.Send(to, fmt.Sprintf("You're invited to %s", storeName), body.String())
}

// Send sends an email with a subject and body (HTML supported).
func (e *EmailSender) Send(to, subject, bodyHTML string) error {
	return e.deliver(to, e.compose(to, subject, bodyHTML))
}

func (e *EmailSender) from() string {
	return fmt.Sprintf("%s <%s>", e.cfg.FromName, e.cfg.Username)
}

func (e *EmailSender) compose(to, subject, bodyHTML string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.from())
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(buildHTMLTemplate(bodyHTML))
	return msg.Bytes()
}

func (e *EmailSender) smtpDeliver(to string, msg []byte) error {
	serverAddr := e.cfg.Host + ":" + e.cfg.Port
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)

	if !e.cfg.Secure {
		// Port 587 - STARTTLS
		if err := smtp.SendMail(serverAddr, auth, e.cfg.Username, []string{to}, msg); err != nil {
			return fmt.Errorf("send mail failed: %w", err)
		}
		return nil
	}

	// Port 465 - implicit TLS
	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: e.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth failed: %w", err)
	}
	return e.sendMail(client, to, msg)
}

func (e *EmailSender) sendMail(client *smtp.Client, to string, msg []byte) error {
	if err := client.Mail(e.cfg.Username); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return nil
}

const layoutHead = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8" />
	<title>Storefront</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f6f8fa; padding: 30px; }
		.container { max-width: 600px; margin: auto; background: #fff; border-radius: 10px; overflow: hidden; }
		.header { background: #1f6f5c; color: white; text-align: center; padding: 20px; font-size: 22px; font-weight: bold; }
		.body { padding: 25px; color: #333; line-height: 1.6; }
		.footer { background: #f1f1f1; color: #555; text-align: center; padding: 15px; font-size: 13px; }
		a.button { display: inline-block; background: #1f6f5c; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none; }
	</style>
</head>
<body>
<div class="container">
	<div class="header">Storefront</div>
	<div class="body">
`

const layoutFoot = `
	</div>
	<div class="footer">Sent by Storefront on behalf of your team.</div>
</div>
</body>
</html>
`

// buildHTMLTemplate wraps a rendered body in the shared mail layout.
func buildHTMLTemplate(content string) string {
	return layoutHead + content + layoutFoot
}
