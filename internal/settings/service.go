package settings

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/identity"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

var (
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Service reads and writes portal settings. Records are created with
// defaults the first time a locale is read.
type Service struct {
	repo    Repository
	locales *locale.Resolver
	logger  interfaces.Logger
	now     func() time.Time

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, locales *locale.Resolver, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		locales: locales,
		logger:  logging.NoOp(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the settings view for the requested locale.
func (s *Service) Get(ctx context.Context, requested string) (*Settings, error) {
	code := s.locales.Resolve(requested)

	presentation, err := s.presentation(ctx)
	if err != nil {
		return nil, err
	}
	text, err := s.text(ctx, code)
	if err != nil {
		return nil, err
	}
	return compose(presentation, text), nil
}

// Update validates input and writes the shared presentation record and the
// locale's text record.
func (s *Service) Update(ctx context.Context, requested string, input Settings) (*Settings, error) {
	code := s.locales.Resolve(requested)
	input = normalize(input)
	if err := Validate(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	presentation := &Presentation{
		ID:           identity.PresentationUUID(),
		Logo:         input.Logo,
		PrimaryColor: input.PrimaryColor,
		AccentColor:  input.AccentColor,
		UpdatedAt:    now,
	}
	text := &LocaleText{
		ID:              identity.SettingsUUID(code),
		Locale:          code,
		SiteName:        input.SiteName,
		SiteDescription: input.SiteDescription,
		ContactEmail:    input.ContactEmail,
		ContactPhone:    input.ContactPhone,
		Address:         input.Address,
		Social:          input.Social,
		UpdatedAt:       now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.PutSettings(ctx, presentation, text); err != nil {
		return nil, domain.StoreUnavailable(err, "settings.update")
	}
	s.logger.Info("settings.updated", "locale", code)
	return compose(presentation, text), nil
}

// Validate checks a settings view.
func Validate(input Settings) error {
	return domain.Validation(validation.ValidateStruct(&input,
		validation.Field(&input.SiteName, validation.Required, validation.Length(1, 200)),
		validation.Field(&input.PrimaryColor, validation.Required, validation.Match(colorPattern).Error("must be a #rgb or #rrggbb color")),
		validation.Field(&input.AccentColor, validation.Required, validation.Match(colorPattern).Error("must be a #rgb or #rrggbb color")),
		validation.Field(&input.ContactEmail, validation.Match(emailPattern).Error("must be a valid email address")),
	), "invalid settings")
}

func (s *Service) presentation(ctx context.Context) (*Presentation, error) {
	presentation, err := s.repo.GetPresentation(ctx)
	if err == nil {
		return presentation, nil
	}
	if !domain.IsNotFound(err) {
		return nil, domain.StoreUnavailable(err, "settings.get")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if presentation, err := s.repo.GetPresentation(ctx); err == nil {
		return presentation, nil
	}
	presentation = &Presentation{
		ID:           identity.PresentationUUID(),
		Logo:         DefaultLogo,
		PrimaryColor: DefaultPrimaryColor,
		AccentColor:  DefaultAccentColor,
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.repo.PutPresentation(ctx, presentation); err != nil {
		return nil, domain.StoreUnavailable(err, "settings.create")
	}
	s.logger.Debug("settings.presentation_created")
	return presentation, nil
}

func (s *Service) text(ctx context.Context, code string) (*LocaleText, error) {
	text, err := s.repo.GetText(ctx, code)
	if err == nil {
		return text, nil
	}
	if !domain.IsNotFound(err) {
		return nil, domain.StoreUnavailable(err, "settings.get")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if text, err := s.repo.GetText(ctx, code); err == nil {
		return text, nil
	}
	text = &LocaleText{
		ID:              identity.SettingsUUID(code),
		Locale:          code,
		SiteName:        DefaultSiteName,
		SiteDescription: DefaultSiteDescription,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.repo.PutText(ctx, text); err != nil {
		return nil, domain.StoreUnavailable(err, "settings.create")
	}
	s.logger.Debug("settings.text_created", "locale", code)
	return text, nil
}

func normalize(input Settings) Settings {
	input.SiteName = strings.TrimSpace(input.SiteName)
	input.SiteDescription = strings.TrimSpace(input.SiteDescription)
	input.Logo = strings.TrimSpace(input.Logo)
	input.PrimaryColor = strings.TrimSpace(input.PrimaryColor)
	input.AccentColor = strings.TrimSpace(input.AccentColor)
	input.ContactEmail = strings.TrimSpace(input.ContactEmail)
	input.ContactPhone = strings.TrimSpace(input.ContactPhone)
	input.Address = strings.TrimSpace(input.Address)
	if input.Logo == "" {
		input.Logo = DefaultLogo
	}
	return input
}
