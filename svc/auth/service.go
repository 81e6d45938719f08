package auth

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/launchkit/pkg/blob"
	"github.com/dmitrymomot/launchkit/pkg/cache"
	"github.com/dmitrymomot/launchkit/pkg/logger"
	"github.com/dmitrymomot/launchkit/pkg/mailer"
)

// Service is the auth orchestrator. Constructed once at startup with all
// collaborators injected; safe for concurrent use.
type Service struct {
	storage     Storage
	mail        mailer.EmailSender
	adapters    map[string]ProviderAdapter
	avatars     *blob.Storage
	avatarCache *cache.Cache[string]
	cfg         Config
	log         *slog.Logger
	now         func() time.Time
	syncMail    bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithProvider registers an OAuth provider adapter.
func WithProvider(a ProviderAdapter) Option {
	return func(s *Service) { s.adapters[a.ProviderID()] = a }
}

// WithAvatarStorage enables avatar uploads.
func WithAvatarStorage(st *blob.Storage) Option {
	return func(s *Service) { s.avatars = st }
}

// WithAvatarCache caches presigned avatar URLs. Optional; lookups fall
// through to storage when absent.
func WithAvatarCache(c *cache.Cache[string]) Option {
	return func(s *Service) { s.avatarCache = c }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSynchronousMail makes email dispatch blocking. Production keeps the
// default fire-and-forget so mail latency never sits on the response path;
// tests need the deterministic ordering.
func WithSynchronousMail() Option {
	return func(s *Service) { s.syncMail = true }
}

// NewService creates the auth orchestrator.
func NewService(storage Storage, mail mailer.EmailSender, cfg Config, opts ...Option) *Service {
	s := &Service{
		storage:  storage,
		mail:     mail,
		adapters: make(map[string]ProviderAdapter),
		cfg:      cfg,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sendMail dispatches an email without blocking the request path. Failures
// are logged, never surfaced to the user: the flows that send mail all have
// a resend path.
func (s *Service) sendMail(ctx context.Context, params mailer.SendEmailParams) {
	send := func(ctx context.Context) {
		if err := s.mail.SendEmail(ctx, params); err != nil {
			s.log.ErrorContext(ctx, "failed to send email",
				logger.Error(err),
				slog.String("tag", params.Tag),
			)
		}
	}
	if s.syncMail {
		send(ctx)
		return
	}
	go send(context.WithoutCancel(ctx))
}
