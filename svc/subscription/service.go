package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/gemsimce/pkg/apikey"
	"github.com/dmitrymomot/gemsimce/pkg/email"
	"github.com/dmitrymomot/gemsimce/pkg/email/templates"
	"github.com/dmitrymomot/gemsimce/pkg/jwt"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
	"github.com/dmitrymomot/gemsimce/pkg/validator"
)

const (
	// CredentialsSubject is the subject of the welcome email.
	CredentialsSubject = "¡Tu acceso a Gems SIMCE está listo! 🎓"

	maxKeyAttempts = 3
	emailTag       = "credentials"
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	FrontendURL  string `env:"FRONTEND_URL" envDefault:"https://gems.app"`
	PlansFile    string `env:"PLANS_FILE"`
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"support@gemsimce.cl"`
}

// LoginURL is the link sent in the credentials email.
func (c Config) LoginURL() string {
	return strings.TrimRight(c.FrontendURL, "/") + "/login"
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(claims jwt.Claims) (string, time.Time, error)
}

// Session is the result of a successful key validation.
type Session struct {
	Token        string
	ExpiresAt    time.Time
	Subscription *Subscription
}

// Service implements the order and key validation flows.
type Service struct {
	cfg     Config
	store   Store
	catalog *Catalog
	mailer  email.Sender
	tokens  TokenIssuer
	log     *slog.Logger
	newKey  func() (string, error)
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithCatalog(c *Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithKeyGenerator replaces apikey.Generate, for tests.
func WithKeyGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.newKey = fn
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the subscription flows. Store, mailer and token issuer
// are required.
func NewService(cfg Config, store Store, mailer email.Sender, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if store == nil || mailer == nil || tokens == nil {
		return nil, ErrMissingDeps
	}
	s := &Service{
		cfg:    cfg,
		store:  store,
		mailer: mailer,
		tokens: tokens,
		log:    logger.Discard(),
		newKey: apikey.Generate,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		c, err := LoadCatalog(cfg.PlansFile)
		if err != nil {
			return nil, err
		}
		s.catalog = c
	}
	s.log = s.log.With(logger.Component("subscription"))
	s.log.Debug("plan catalog loaded",
		slog.Any("plans", s.catalog.IDs()),
		logger.Plan(s.catalog.Default().ID),
	)
	return s, nil
}

// HandleOrderCompleted issues a fresh API key for the buyer, upserts their
// subscription on the default tier and emails the credentials. Email
// failures are logged and do not undo the upsert.
func (s *Service) HandleOrderCompleted(ctx context.Context, order Order) (*Subscription, error) {
	if err := validator.Struct(order); err != nil {
		return nil, err
	}

	key, err := s.issueKey(ctx)
	if err != nil {
		return nil, err
	}

	tier := s.catalog.Default()
	now := s.now().UTC()
	sub := Subscription{
		Email:     order.ClientEmail,
		Name:      templates.GreetingName(order.ClientName),
		APIKey:    key,
		Status:    StatusActive,
		Plan:      tier.ID,
		GemsUsed:  0,
		GemsLimit: tier.GemsLimit,
		OrderID:   order.OrderID.String(),
		ProductID: order.ProductID.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	s.log.InfoContext(ctx, "subscription activated",
		logger.Email(sub.Email),
		logger.Plan(sub.Plan),
		logger.OrderID(sub.OrderID),
	)

	if err := s.sendCredentials(ctx, sub); err != nil {
		s.log.ErrorContext(ctx, "failed to send credentials email",
			logger.Email(sub.Email),
			logger.Error(err),
		)
	}
	return &sub, nil
}

// issueKey generates keys until one is not yet in the store.
func (s *Service) issueKey(ctx context.Context) (string, error) {
	for range maxKeyAttempts {
		key, err := s.newKey()
		if err != nil {
			return "", errors.Join(ErrKeyCollision, err)
		}
		exists, err := s.store.APIKeyExists(ctx, key)
		if err != nil {
			return "", errors.Join(ErrStoreFailure, err)
		}
		if !exists {
			return key, nil
		}
		s.log.WarnContext(ctx, "generated api key already exists, retrying")
	}
	return "", ErrKeyCollision
}

func (s *Service) sendCredentials(ctx context.Context, sub Subscription) error {
	body, err := templates.Render(ctx, templates.Credentials(templates.CredentialsData{
		Name:         sub.Name,
		APIKey:       sub.APIKey,
		LoginURL:     s.cfg.LoginURL(),
		SupportEmail: s.cfg.SupportEmail,
	}))
	if err != nil {
		return fmt.Errorf("render credentials email: %w", err)
	}
	return s.mailer.SendEmail(ctx, email.Message{
		To:       sub.Email,
		Subject:  CredentialsSubject,
		BodyHTML: body,
		Tag:      emailTag,
	})
}

// ValidateKey exchanges an API key for a session token. It never changes
// stored state.
func (s *Service) ValidateKey(ctx context.Context, key string) (*Session, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	if !apikey.LooksValid(key) {
		return nil, ErrInvalidAPIKey
	}

	sub, err := s.store.GetByAPIKey(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidAPIKey
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	if !sub.IsActive() {
		return nil, ErrInactive
	}
	tier := s.catalog.Tier(sub.Plan)
	sub.Plan, sub.GemsLimit = tier.ID, tier.GemsLimit

	token, exp, err := s.tokens.Generate(jwt.Claims{
		Email:     sub.Email,
		APIKey:    sub.APIKey,
		Plan:      sub.Plan,
		GemsLimit: sub.GemsLimit,
	})
	if err != nil {
		return nil, errors.Join(ErrIssueToken, err)
	}
	return &Session{Token: token, ExpiresAt: exp, Subscription: sub}, nil
}

// ReserveQuota counts one gem against owner's plan before it is generated.
// It returns ErrInactive when owner has no active subscription and
// ErrQuotaExceeded when the plan is used up. The limit comes from the
// catalog tier of the stored plan.
func (s *Service) ReserveQuota(ctx context.Context, owner string) error {
	sub, err := s.store.GetByEmail(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return ErrInactive
	}
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if !sub.IsActive() {
		return ErrInactive
	}

	err = s.store.ReserveUsage(ctx, owner, s.catalog.Tier(sub.Plan).GemsLimit)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQuotaExceeded):
		return ErrQuotaExceeded
	case errors.Is(err, ErrNotFound):
		return ErrInactive
	}
	return errors.Join(ErrStoreFailure, err)
}

// ReleaseQuota gives back a reserved gem that was never produced.
func (s *Service) ReleaseQuota(ctx context.Context, owner string) error {
	if err := s.store.ReleaseUsage(ctx, owner); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}
