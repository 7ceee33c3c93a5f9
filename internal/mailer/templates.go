package mailer

import (
	"fmt"
	"html/template"
	"strings"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`
<p>Hi,</p>
<p>{{.InviterName}} invited you to join <strong>{{.ClinicName}}</strong> on ClinicPulse as a {{.Role}}.</p>
<p><a href="{{.AcceptURL}}">Accept the invitation</a></p>
<p>This invitation expires on {{.ExpiresAt}}.</p>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>Hi {{.Name}},</p>
<p>We received a request to reset your ClinicPulse password.</p>
<p><a href="{{.ResetURL}}">Reset your password</a></p>
<p>If you did not request this, you can ignore this email. The link expires on {{.ExpiresAt}}.</p>
`))

// InvitationMessage renders the invitation email for a recipient.
func InvitationMessage(to, inviterName, clinicName, role, acceptURL, expiresAt string) (Message, error) {
	var body strings.Builder
	err := invitationTmpl.Execute(&body, map[string]string{
		"InviterName": inviterName,
		"ClinicName":  clinicName,
		"Role":        role,
		"AcceptURL":   acceptURL,
		"ExpiresAt":   expiresAt,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("You're invited to join %s on ClinicPulse", clinicName),
		HTMLBody: body.String(),
	}, nil
}

// PasswordResetMessage renders the reset email for a recipient.
func PasswordResetMessage(to, name, resetURL, expiresAt string) (Message, error) {
	var body strings.Builder
	err := passwordResetTmpl.Execute(&body, map[string]string{
		"Name":      name,
		"ResetURL":  resetURL,
		"ExpiresAt": expiresAt,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Reset your ClinicPulse password",
		HTMLBody: body.String(),
	}, nil
}
