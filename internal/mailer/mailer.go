package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/geniusacademy/registration-service/internal/models"
	gomail "github.com/wneessen/go-mail"
)

// Mailer sends the staff notification for each new registration as an HTML
// email to a configurable recipient list.
type Mailer struct {
	host       string
	port       int
	user       string
	password   string
	from       string
	recipients []string
}

func New(host string, port int, user, password, from string, recipients []string) *Mailer {
	return &Mailer{
		host:       host,
		port:       port,
		user:       user,
		password:   password,
		from:       from,
		recipients: recipients,
	}
}

func (m *Mailer) SendNewRegistration(reg *models.Registration) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.recipients...); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject("New Registration #" + reg.OrderCode)
	msg.SetBodyString(gomail.TypeTextHTML, buildHTML(reg))

	opts := []gomail.Option{gomail.WithPort(m.port)}
	if m.user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.user),
			gomail.WithPassword(m.password),
		)
	}
	client, err := gomail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	return client.DialAndSend(msg)
}

const (
	cellStyle      = `style="padding:6px 8px;border:1px solid #eee;"`
	cellStyleRight = `style="padding:6px 8px;border:1px solid #eee;text-align:right;"`
)

func buildHTML(reg *models.Registration) string {
	var b strings.Builder

	row := func(k, v string) {
		fmt.Fprintf(&b, "<tr><td %s>%s</td><td %s>%s</td></tr>",
			cellStyle, html.EscapeString(k), cellStyle, html.EscapeString(v))
	}

	b.WriteString(`<div style="font-family:Arial,Helvetica,sans-serif;font-size:14px;color:#111">`)
	fmt.Fprintf(&b, "<h2 style=\"margin:0 0 10px;\">New Registration (#%s)</h2>", html.EscapeString(reg.OrderCode))

	b.WriteString(`<table cellpadding="0" cellspacing="0" style="border-collapse:collapse;margin:10px 0;width:100%;">`)
	row("Parent", reg.ParentFirstName+" "+reg.ParentLastName)
	row("Parent Email", reg.ParentEmail)
	row("Phone", reg.ParentPhone)
	row("Student", reg.StudentFirstName+" "+reg.StudentLastName)
	row("Location", reg.Location)
	row("Year Group", reg.YearGroup)
	b.WriteString("</table>")

	b.WriteString(`<h3 style="margin:12px 0 6px;">Selected Classes</h3>`)
	b.WriteString(`<table cellpadding="0" cellspacing="0" style="border-collapse:collapse;width:100%;">`)
	for _, c := range reg.Classes {
		fmt.Fprintf(&b, "<tr><td %s>%s</td><td %s>£%.2f</td></tr>",
			cellStyle, html.EscapeString(reg.Location+" - "+c.Title), cellStyleRight, c.Price)
	}
	b.WriteString("</table>")

	fmt.Fprintf(&b, "<p style=\"text-align:right;\"><strong>Monthly Total:</strong> £%.2f</p>", reg.MonthlyTotal)

	method := "Online Payment"
	if reg.PaymentMethod == models.MethodCash {
		method = "Cash"
	}
	fmt.Fprintf(&b, "<p><strong>Payment Method:</strong> %s</p>", method)

	if reg.SignatureURL != "" {
		fmt.Fprintf(&b, "<p><strong>Signature:</strong> <a href=\"%s\" target=\"_blank\">View</a></p>",
			html.EscapeString(reg.SignatureURL))
	}
	b.WriteString("</div>")

	return b.String()
}
