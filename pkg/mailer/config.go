package mailer

// Config holds email service configuration.
// Postmark tokens are optional to support development environments where
// outbound email is written to disk instead. SenderEmail and SupportEmail
// establish the sender identity and reply-to behavior for all messages.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
	DevOutputDir         string `env:"MAILER_DEV_DIR" envDefault:"./tmp/emails"`
}
