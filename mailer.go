package newsroom

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"
)

var verificationEmailTmpl = template.Must(template.New("verification").Parse(`<html>
<body>
	<p>Hi {{.Name}},</p>
	<p>Confirm your email address to activate your account:</p>
	<p><a href="{{.Link}}">Verify email</a></p>
	<p>This link expires in {{.Expiry}}.</p>
</body>
</html>`))

var resetPasswordEmailTmpl = template.Must(template.New("reset").Parse(`<html>
<body>
	<p>Hi {{.Name}},</p>
	<p>A password change was requested for your account. If this was you,
	confirm it here:</p>
	<p><a href="{{.Link}}">Confirm password change</a></p>
	<p>This link expires in {{.Expiry}}. If you did not request this,
	ignore this email and your password stays unchanged.</p>
</body>
</html>`))

type emailContext struct {
	Name   string
	Link   string
	Expiry string
}

// Mailer renders and dispatches account emails. Send runs in its own
// goroutine: the triggering HTTP response never waits on delivery, and
// delivery failures only get logged.
type Mailer struct {
	dispatcher EmailDispatcher
	baseURL    string
	verifyTTL  time.Duration
	resetTTL   time.Duration
	logger     Logger
	timeout    time.Duration
}

func NewMailer(dispatcher EmailDispatcher, cfg *Config) *Mailer {
	if dispatcher == nil {
		dispatcher = LogDispatcher{}
	}

	m := &Mailer{
		dispatcher: dispatcher,
		baseURL:    cfg.BaseURL,
		verifyTTL:  cfg.VerificationTokenLifetime,
		resetTTL:   cfg.ResetTokenLifetime,
		logger:     defLogger{},
		timeout:    30 * time.Second,
	}

	if m.verifyTTL <= 0 {
		m.verifyTTL = DefaultVerificationLifetime
	}
	if m.resetTTL <= 0 {
		m.resetTTL = DefaultResetLifetime
	}

	return m
}

func (m *Mailer) WithLogger(logger Logger) *Mailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// SendVerificationEmail dispatches the verify link, fire-and-forget
func (m *Mailer) SendVerificationEmail(user *User, token string) {
	link := m.link("/auth/verify", token)
	m.send("Email Verification", user, verificationEmailTmpl, emailContext{
		Name:   user.Name,
		Link:   link,
		Expiry: m.verifyTTL.String(),
	})
}

// SendPasswordResetEmail dispatches the confirm-password-change link
func (m *Mailer) SendPasswordResetEmail(user *User, token string) {
	link := m.link("/auth/confirm-password-change", token)
	m.send("Email Reset Password", user, resetPasswordEmailTmpl, emailContext{
		Name:   user.Name,
		Link:   link,
		Expiry: m.resetTTL.String(),
	})
}

func (m *Mailer) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", m.baseURL, path, url.QueryEscape(token))
}

func (m *Mailer) send(subject string, user *User, tmpl *template.Template, data emailContext) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		m.logger.Error("failed to render %s email: %v", subject, err)
		return
	}

	to := user.Email

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.dispatcher.Send(ctx, subject, to, body.String()); err != nil {
			m.logger.Warn("email dispatch failed subject=%s to=%s: %v", subject, to, err)
		}
	}()
}

// LogDispatcher is the default dispatcher: it prints the notification
// instead of delivering it. Deployments plug a real transport in.
type LogDispatcher struct{}

func (LogDispatcher) Send(ctx context.Context, subject, toAddress, htmlBody string) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("subject: %s\n", subject)
	fmt.Printf("to: %s\n", toAddress)
	fmt.Printf("bytes: %d\n", len(htmlBody))
	return nil
}
