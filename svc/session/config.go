package session

import "time"

// Config controls cookie naming and session lifetime.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"session"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	LoginPath  string        `env:"SESSION_LOGIN_PATH" envDefault:"/auth/login"`
	VerifyPath string        `env:"SESSION_VERIFY_PATH" envDefault:"/auth/verify-email"`
	Secure     bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}
