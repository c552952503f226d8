package gems

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/gemsimce/pkg/genai"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
	"github.com/dmitrymomot/gemsimce/pkg/validator"
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	EnforceQuota bool `env:"GEMS_ENFORCE_QUOTA" envDefault:"true"`
}

// Quota gates generation per owner. ReserveQuota atomically counts a gem
// and fails when the owner may not generate another one; ReleaseQuota
// returns a reservation whose gem was never stored.
type Quota interface {
	ReserveQuota(ctx context.Context, owner string) error
	ReleaseQuota(ctx context.Context, owner string) error
}

// GenerateRequest is the validated input shared by both plan variants.
// Only the input matching Variant is used.
type GenerateRequest struct {
	Variant Variant
	Owner   string
	School  SchoolInput
	SIMCE   SIMCEInput
}

// Validate checks the input of the selected variant.
func (r GenerateRequest) Validate() error {
	switch r.Variant {
	case VariantSchool:
		return validator.Struct(r.School)
	case VariantSIMCE:
		return validator.Struct(r.SIMCE)
	}
	return ErrUnknownVariant
}

// Prompt builds the deterministic user prompt.
func (r GenerateRequest) Prompt() string {
	if r.Variant == VariantSIMCE {
		return SIMCEPrompt(r.SIMCE)
	}
	return SchoolPrompt(r.School)
}

// Service generates and reads gems.
type Service struct {
	cfg   Config
	store Store
	ai    genai.Generator
	quota Quota
	log   *slog.Logger
	now   func() time.Time
	newID func() string
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

// WithQuota enables per-owner usage accounting.
func WithQuota(q Quota) Option {
	return func(s *Service) {
		s.quota = q
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

// WithIDGenerator overrides uuid.NewString, for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewService(cfg Config, store Store, ai genai.Generator, opts ...Option) (*Service, error) {
	if store == nil || ai == nil {
		return nil, ErrMissingDeps
	}
	s := &Service{
		cfg:   cfg,
		store: store,
		ai:    ai,
		log:   logger.Discard(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("gems"))
	return s, nil
}

// Generate validates req, reserves quota, asks the model for a plan and
// stores it. Nothing is stored unless generation succeeds, and a failed
// attempt releases its reservation.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Gem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reserved := s.enforceQuota(req.Owner)
	if reserved {
		if err := s.quota.ReserveQuota(ctx, req.Owner); err != nil {
			return nil, err
		}
	}

	gem, err := s.generate(ctx, req)
	if err != nil {
		if reserved {
			s.releaseQuota(ctx, req.Owner)
		}
		return nil, err
	}
	return gem, nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (*Gem, error) {
	start := time.Now()
	text, err := s.ai.Generate(ctx, genai.Request{
		System:          SystemPrompt(req.Variant),
		Prompt:          req.Prompt(),
		Temperature:     genai.DefaultTemperature,
		MaxOutputTokens: genai.DefaultMaxOutputTokens,
	})
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.Join(ErrGenerationFailed, genai.ErrEmptyCompletion)
	}

	gem := Gem{
		ID:         s.newID(),
		Variant:    req.Variant,
		Plan:       text,
		OwnerEmail: req.Owner,
		CreatedAt:  s.now().UTC(),
	}
	switch req.Variant {
	case VariantSchool:
		gem.SchoolInput = req.School
	case VariantSIMCE:
		gem.SIMCEInput = req.SIMCE
	}

	if err := s.store.Create(ctx, gem); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	s.log.InfoContext(ctx, "gem generated",
		logger.GemID(gem.ID),
		slog.String("variant", string(gem.Variant)),
		logger.Email(req.Owner),
		logger.Duration(start),
	)
	return &gem, nil
}

// releaseQuota runs detached from ctx so a cancelled request still gives
// its reservation back.
func (s *Service) releaseQuota(ctx context.Context, owner string) {
	if err := s.quota.ReleaseQuota(context.WithoutCancel(ctx), owner); err != nil {
		s.log.ErrorContext(ctx, "failed to release gem quota",
			logger.Email(owner),
			logger.Error(err),
		)
	}
}

func (s *Service) enforceQuota(owner string) bool {
	return s.cfg.EnforceQuota && s.quota != nil && owner != ""
}

// List returns up to limit gems, newest first. Non-positive or larger
// limits fall back to DefaultListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]Gem, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	list, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	if list == nil {
		list = []Gem{}
	}
	return list, nil
}

// Get returns a single gem or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Gem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	gem, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return gem, nil
}
