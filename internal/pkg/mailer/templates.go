package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// LinkEmailData holds data for emails carrying a one-time link.
type LinkEmailData struct {
	SiteName  string
	Name      string
	Link      string
	ExpiresIn string // e.g., "24 hours"
}

// OTPEmailData holds data for login code emails.
type OTPEmailData struct {
	SiteName  string
	Name      string
	Code      string
	ExpiresIn string
}

// BuildVerificationEmail creates the account verification email.
func BuildVerificationEmail(to string, data LinkEmailData) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Verify your %s account", data.SiteName),
		TextBody: fmt.Sprintf("Hello %s,\n\nConfirm your email address by opening this link:\n%s\n\nThe link expires in %s.\n",
			data.Name, data.Link, data.ExpiresIn),
		HTMLBody: render(verificationHTML, data),
	}
}

// BuildPasswordResetEmail creates the password reset email.
func BuildPasswordResetEmail(to string, data LinkEmailData) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: fmt.Sprintf("Hello %s,\n\nReset your password by opening this link:\n%s\n\nThe link expires in %s. If you did not request a reset, ignore this email.\n",
			data.Name, data.Link, data.ExpiresIn),
		HTMLBody: render(resetHTML, data),
	}
}

// BuildOTPEmail creates the login code email.
func BuildOTPEmail(to string, data OTPEmailData) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Your %s login code", data.SiteName),
		TextBody: fmt.Sprintf("Hello %s,\n\nYour login code is: %s\n\nThis code expires in %s.\n",
			data.Name, data.Code, data.ExpiresIn),
		HTMLBody: render(otpHTML, data),
	}
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

var verificationHTML = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html><body style="font-family: sans-serif;">
<p>Hello {{.Name}},</p>
<p>Confirm your email address for {{.SiteName}}:</p>
<p><a href="{{.Link}}">Verify my account</a></p>
<p style="color:#666;">This link expires in {{.ExpiresIn}}.</p>
</body></html>`))

var resetHTML = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html><body style="font-family: sans-serif;">
<p>Hello {{.Name}},</p>
<p><a href="{{.Link}}">Reset your {{.SiteName}} password</a></p>
<p style="color:#666;">This link expires in {{.ExpiresIn}}. If you did not request a reset, ignore this email.</p>
</body></html>`))

var otpHTML = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html><body style="font-family: sans-serif;">
<p>Hello {{.Name}},</p>
<p>Your {{.SiteName}} login code is</p>
<p style="font-size:24px;letter-spacing:4px;"><strong>{{.Code}}</strong></p>
<p style="color:#666;">This code expires in {{.ExpiresIn}}.</p>
</body></html>`))
