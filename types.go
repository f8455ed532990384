package newsroom

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// PasswordHasher hashes and verifies account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	// VerifyAndUpdate verifies and, when the stored hash was produced with
	// outdated parameters, returns a replacement hash the caller must
	// persist. The second value is empty when no upgrade is needed.
	VerifyAndUpdate(password, hash string) (bool, string)
	// DummyHash burns one hashing round against a throwaway value so the
	// user-not-found login path costs the same as a real verification.
	DummyHash()
}

// EmailDispatcher delivers outbound mail. Send is invoked fire-and-forget
// from the request path; implementations must not assume anyone is looking
// at the returned error beyond logging.
type EmailDispatcher interface {
	Send(ctx context.Context, subject, toAddress, htmlBody string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] NEWSROOM "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] NEWSROOM "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] NEWSROOM "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] NEWSROOM "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
