package utils

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"
)

const companyName = "EcoRide"

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #2e7d32; margin: 0;">EcoRide</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>Ceci est un message automatique, merci de ne pas y répondre.</p>
		</div>
	</div>
</body>
</html>
`

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	host     string
	port     string
	from     string
	password string
	baseURL  string
	send     SendFunc
}

func NewMailer(host, port, from, password, baseURL string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		baseURL:  strings.TrimRight(baseURL, "/"),
		send:     smtp.SendMail,
	}
}

// WithSender replaces the SMTP transport. Used by tests.
func (m *Mailer) WithSender(send SendFunc) *Mailer {
	m.send = send
	return m
}

func (m *Mailer) Configured() bool {
	return m.from != "" && m.password != "" && m.host != "" && m.port != ""
}

func (m *Mailer) sendEmail(to []string, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("email configuration not set")
	}
	if len(to) == 0 {
		return nil
	}

	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", companyName, m.from)},
		{"To", m.from},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
		{"X-Mailer", "EcoRide-Mailer"},
	}

	var message strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", m.from, m.password, m.host)

	// Recipients go in the envelope only so passengers never see each other.
	if err := m.send(m.host+":"+m.port, auth, m.from, to, []byte(message.String())); err != nil {
		return fmt.Errorf("send %q to %d recipients: %w", subject, len(to), err)
	}
	return nil
}

func (m *Mailer) button(path, label string) string {
	return fmt.Sprintf(`<div style="text-align: center; margin: 30px 0;">
						<a href="%s%s" style="background-color: #2e7d32; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">%s</a>
					</div>`, m.baseURL, path, label)
}

func formatDeparture(at time.Time) string {
	return at.Format("02/01/2006 à 15h04")
}

// SendRideCancelledEmail tells the passengers that the driver cancelled;
// their credits have already been refunded.
func (m *Mailer) SendRideCancelledEmail(to []string, from, dest string, departure time.Time) error {
	subject := "Covoiturage annulé - EcoRide"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Covoiturage annulé</h1>
					<p>Bonjour,</p>
					<p>Le covoiturage <strong>%s → %s</strong> prévu le <strong>%s</strong> a été annulé par le chauffeur.</p>
					<p>Vos crédits vous ont été restitués.</p>
					%s
					<p>L'équipe EcoRide</p>
				</div>`+emailFooter,
		html.EscapeString(from), html.EscapeString(dest), formatDeparture(departure), m.button("/covoiturages", "Trouver un autre trajet"))

	return m.sendEmail(to, subject, body)
}

// SendReviewRequestEmail asks passengers to validate the trip and leave a
// review once the driver marked it completed.
func (m *Mailer) SendReviewRequestEmail(to []string, from, dest string, rideID uint) error {
	subject := "Votre trajet est terminé - EcoRide"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Comment s'est passé votre trajet ?</h1>
					<p>Bonjour,</p>
					<p>Le chauffeur a indiqué que le trajet <strong>%s → %s</strong> est terminé.</p>
					<p>Merci de valider votre participation et de laisser un avis.</p>
					%s
					<p>L'équipe EcoRide</p>
				</div>`+emailFooter,
		html.EscapeString(from), html.EscapeString(dest), m.button(fmt.Sprintf("/covoiturages/%d/avis", rideID), "Valider et noter"))

	return m.sendEmail(to, subject, body)
}

func (m *Mailer) SendPasswordResetEmail(to, token string, ttl time.Duration) error {
	subject := "Réinitialisation du mot de passe - EcoRide"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Réinitialisation du mot de passe</h1>
					<p>Bonjour,</p>
					<p>Vous avez demandé à réinitialiser votre mot de passe. Ce lien est valable %d minutes.</p>
					%s
					<p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
					<p>L'équipe EcoRide</p>
				</div>`+emailFooter,
		int(ttl.Minutes()), m.button("/mot-de-passe/reinitialiser?token="+token, "Choisir un nouveau mot de passe"))

	return m.sendEmail([]string{to}, subject, body)
}
