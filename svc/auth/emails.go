package auth

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dmitrymomot/launchkit/pkg/mailer"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Verify your email</h2>
  <p>Enter this code to confirm your email address:</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
  <p>The code expires in {{.TTLMinutes}} minutes. If you didn't request it, you can ignore this email.</p>
</body>
</html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Reset your password</h2>
  <p>Click the link below to choose a new password:</p>
  <p><a href="{{.Link}}">{{.Link}}</a></p>
  <p>The link expires in {{.TTLMinutes}} minutes and can be used once. If you didn't request it, you can ignore this email.</p>
</body>
</html>`))

func (s *Service) verificationEmail(to, code string) mailer.SendEmailParams {
	var sb strings.Builder
	_ = verificationTmpl.Execute(&sb, struct {
		Code       string
		TTLMinutes int
	}{Code: code, TTLMinutes: int(s.cfg.TokenTTL.Minutes())})

	return mailer.SendEmailParams{
		SendTo:   to,
		Subject:  "Verify your email",
		BodyHTML: sb.String(),
		Tag:      "email-verification",
	}
}

func (s *Service) resetEmail(to, code string) mailer.SendEmailParams {
	link := fmt.Sprintf("%s/reset-password?code=%s", strings.TrimSuffix(s.cfg.AppURL, "/"), code)

	var sb strings.Builder
	_ = resetTmpl.Execute(&sb, struct {
		Link       string
		TTLMinutes int
	}{Link: link, TTLMinutes: int(s.cfg.TokenTTL.Minutes())})

	return mailer.SendEmailParams{
		SendTo:   to,
		Subject:  "Reset your password",
		BodyHTML: sb.String(),
		Tag:      "password-reset",
	}
}
