package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"seknuto-api/internal/storage"
)

type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	AdminEmail string
}

// SMTPNotifier sends notifications through a standard SMTP relay.
type SMTPNotifier struct {
	cfg       SMTPConfig
	templates *template.Template
	logger    *zap.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, logger *zap.Logger) (*SMTPNotifier, error) {
	tmpl, err := template.New("email").Parse(templates)
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &SMTPNotifier{cfg: cfg, templates: tmpl, logger: logger}, nil
}

// SendBookingConfirmation mails the customer a summary of their
// request.
func (n *SMTPNotifier) SendBookingConfirmation(ctx context.Context, b storage.Booking) error {
	return n.send(ctx, b.CustomerEmail, "Potvrzení rezervace - SeknuTo.cz", "booking_confirmation", b)
}

// SendBookingAlert mails the admin about a new booking.
func (n *SMTPNotifier) SendBookingAlert(ctx context.Context, b storage.Booking) error {
	if n.cfg.AdminEmail == "" {
		return nil
	}
	return n.send(ctx, n.cfg.AdminEmail, fmt.Sprintf("Nová rezervace - %s", b.CustomerName), "booking_alert", b)
}

// SendContactAlert mails the admin a contact-form submission.
func (n *SMTPNotifier) SendContactAlert(ctx context.Context, m storage.ContactMessage) error {
	if n.cfg.AdminEmail == "" {
		return nil
	}
	return n.send(ctx, n.cfg.AdminEmail, fmt.Sprintf("Nová zpráva od %s - SeknuTo.cz", m.Name), "contact_alert", m)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, tmpl string, data any) error {
	var body bytes.Buffer
	if err := n.templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}

	var msg strings.Builder
	msg.WriteString("From: SeknuTo.cz <" + n.cfg.From + ">\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}

	n.logger.Info("Email sent", zap.String("to", to), zap.String("template", tmpl))
	return nil
}

const templates = `
{{define "booking_confirmation"}}
<html><body style="font-family: Arial, sans-serif; color: #222;">
<h1 style="color: #3FA34D;">Potvrzení rezervace</h1>
<p>Dobrý den <strong>{{.CustomerName}}</strong>,</p>
<p>děkujeme za rezervaci! Vaše objednávka byla úspěšně přijata.</p>
<table>
<tr><td><strong>Služba:</strong></td><td>{{.Service}}</td></tr>
<tr><td><strong>Datum:</strong></td><td>{{.PreferredDate}}</td></tr>
<tr><td><strong>Čas:</strong></td><td>{{.PreferredTime}}</td></tr>
<tr><td><strong>Adresa:</strong></td><td>{{.PropertyAddress}}</td></tr>
<tr><td><strong>Odhadovaná cena:</strong></td><td>{{.EstimatedPrice}} Kč</td></tr>
</table>
<p>Brzy vás budeme kontaktovat na tel. <strong>{{.CustomerPhone}}</strong> pro finální potvrzení termínu.</p>
<p>S pozdravem,<br><strong>Tým SeknuTo.cz</strong></p>
</body></html>
{{end}}

{{define "booking_alert"}}
<html><body style="font-family: Arial, sans-serif; color: #222;">
<h1 style="color: #FF6B35;">Nová rezervace</h1>
<h2>Zákazník: {{.CustomerName}}</h2>
<table>
<tr><td><strong>Telefon:</strong></td><td>{{.CustomerPhone}}</td></tr>
<tr><td><strong>Email:</strong></td><td>{{.CustomerEmail}}</td></tr>
<tr><td><strong>Adresa:</strong></td><td>{{.PropertyAddress}}</td></tr>
<tr><td><strong>Služba:</strong></td><td>{{.Service}}</td></tr>
<tr><td><strong>Velikost:</strong></td><td>{{.PropertySize}} m²</td></tr>
<tr><td><strong>Stav:</strong></td><td>{{.Condition}}</td></tr>
<tr><td><strong>Termín:</strong></td><td>{{.PreferredDate}} - {{.PreferredTime}}</td></tr>
<tr><td><strong>Cena:</strong></td><td>~{{.EstimatedPrice}} Kč</td></tr>
{{if .CouponCode}}<tr><td><strong>Kupón:</strong></td><td>{{.CouponCode}}</td></tr>{{end}}
</table>
{{if .Notes}}<p><strong>Poznámka od zákazníka:</strong><br>{{.Notes}}</p>{{end}}
</body></html>
{{end}}

{{define "contact_alert"}}
<html><body style="font-family: Arial, sans-serif; color: #222;">
<h2>Nová zpráva z kontaktního formuláře</h2>
<p><strong>Jméno:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Telefon:</strong> {{if .Phone}}{{.Phone}}{{else}}Neuvedeno{{end}}</p>
<p><strong>Zpráva:</strong></p>
<p>{{.Message}}</p>
</body></html>
{{end}}
`
