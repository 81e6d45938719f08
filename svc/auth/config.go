package auth

import "time"

// Config tunes token lifetimes and hashing cost.
type Config struct {
	AppURL         string        `env:"APP_URL" envDefault:"http://localhost:8080"`
	TokenTTL       time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"15m"`
	ResendCooldown time.Duration `env:"AUTH_RESEND_COOLDOWN" envDefault:"1m"`
	BcryptCost     int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}
