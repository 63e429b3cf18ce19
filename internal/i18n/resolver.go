package i18n

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/identity"
	"github.com/goliatone/go-portal/internal/locale"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Tier names the source a resolved dictionary came from.
type Tier string

const (
	TierStored        Tier = "stored"
	TierLocaleDefault Tier = "locale_default"
	TierSystemDefault Tier = "system_default"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Second
)

// Resolver loads UI dictionaries from the store under a hard timeout and
// falls back to the embedded defaults when the store is slow, failing, or
// empty for the locale.
type Resolver struct {
	store       Store
	locales     *locale.Resolver
	timeout     time.Duration
	maxRetries  int
	baseBackoff time.Duration
	logger      interfaces.Logger
	now         func() time.Time
	defaults    func() (map[string]Dictionary, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout bounds every store call.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithRetry sets the attempt budget and the linear backoff step used by
// ResolveWithRetry. A budget of zero leaves a single attempt.
func WithRetry(maxRetries int, base time.Duration) Option {
	return func(r *Resolver) {
		if maxRetries >= 0 {
			r.maxRetries = max(maxRetries, 1)
		}
		if base >= 0 {
			r.baseBackoff = base
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithDefaults replaces the embedded fallback dictionaries.
func WithDefaults(tables map[string]Dictionary) Option {
	return func(r *Resolver) {
		r.defaults = func() (map[string]Dictionary, error) {
			return tables, nil
		}
	}
}

// NewResolver builds a Resolver. A nil store serves the embedded defaults.
func NewResolver(store Store, locales *locale.Resolver, opts ...Option) *Resolver {
	r := &Resolver{
		store:       store,
		locales:     locales,
		timeout:     DefaultTimeout,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
		logger:      logging.NoOp(),
		now:         time.Now,
		defaults:    Defaults,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the dictionary for the requested locale after a single
// store attempt. It always returns a usable dictionary.
func (r *Resolver) Resolve(ctx context.Context, requested string) (Dictionary, Tier) {
	code := r.activeLocale(requested)
	dict, err := r.fetch(ctx, code)
	if err == nil && len(dict) > 0 {
		return dict, TierStored
	}
	return r.fallback(code, err)
}

// ResolveWithRetry retries transient store failures with linearly growing
// waits before falling back. Missing dictionaries are not retried.
func (r *Resolver) ResolveWithRetry(ctx context.Context, requested string) (Dictionary, Tier) {
	code := r.activeLocale(requested)
	logger := logging.WithFields(r.logger, map[string]any{"locale": code})

	dict, err := backoff.Retry(ctx, func() (Dictionary, error) {
		dict, err := r.fetch(ctx, code)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return dict, nil
	},
		backoff.WithBackOff(&linearBackOff{step: r.baseBackoff}),
		backoff.WithMaxTries(uint(r.maxRetries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.Debug("translations.retry", "error", err, "wait", wait)
		}),
	)
	if err == nil && len(dict) > 0 {
		return dict, TierStored
	}
	return r.fallback(code, err)
}

// T resolves the locale and looks up key, returning key on a miss.
func (r *Resolver) T(ctx context.Context, requested, key string) string {
	dict, _ := r.Resolve(ctx, requested)
	return dict.T(key)
}

// Setup replaces the stored dictionary of a locale wholesale.
func (r *Resolver) Setup(ctx context.Context, code string, dict Dictionary) error {
	code = strings.TrimSpace(code)
	if err := r.validateSetup(code, dict); err != nil {
		return err
	}
	if r.store == nil {
		return domain.StoreUnavailable(errNoStore, "translations.setup")
	}

	now := r.now().UTC()
	record := &Record{
		ID:        identity.DictionaryUUID(code),
		Locale:    code,
		Entries:   dict.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.store.Put(ctx, record); err != nil {
		return domain.StoreUnavailable(err, "translations.setup")
	}
	r.logger.Info("translations.setup", "locale", code, "keys", len(dict))
	return nil
}

func (r *Resolver) validateSetup(code string, dict Dictionary) error {
	err := validation.Errors{
		"locale": validation.Validate(code,
			validation.Required,
			validation.By(func(any) error {
				if r.locales != nil && !r.locales.IsSupported(code) {
					return validation.NewError("validation_locale_unsupported", "locale is not supported")
				}
				return nil
			}),
		),
		"translations": validation.Validate(map[string]string(dict),
			validation.Required,
			validation.By(func(any) error {
				for key := range dict {
					if strings.TrimSpace(key) == "" {
						return validation.NewError("validation_blank_key", "keys must not be blank")
					}
				}
				return nil
			}),
		),
	}.Filter()
	return domain.Validation(err, "invalid translations")
}

func (r *Resolver) activeLocale(requested string) string {
	if r.locales == nil {
		return strings.TrimSpace(requested)
	}
	return r.locales.Resolve(requested)
}

type fetchResult struct {
	dict Dictionary
	err  error
}

// fetch runs one store call and abandons it once the timeout elapses. The
// goroutine writes to a buffered channel so a late reply never blocks.
func (r *Resolver) fetch(ctx context.Context, code string) (Dictionary, error) {
	if r.store == nil {
		return nil, domain.NotFound("dictionary", code, code)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make(chan fetchResult, 1)
	go func() {
		record, err := r.store.Get(ctx, code)
		if err != nil {
			results <- fetchResult{err: err}
			return
		}
		results <- fetchResult{dict: Dictionary(record.Entries).Clone()}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, domain.StoreUnavailable(res.err, "translations.get")
		}
		return res.dict, nil
	case <-ctx.Done():
		return nil, domain.StoreUnavailable(ctx.Err(), "translations.get")
	}
}

func (r *Resolver) fallback(code string, cause error) (Dictionary, Tier) {
	logger := logging.WithFields(r.logger, map[string]any{"locale": code})

	tables, err := r.defaults()
	if err != nil {
		logger.Error("translations.defaults_unavailable", "error", err)
		return Dictionary{}, TierSystemDefault
	}
	if dict, ok := tables[code]; ok && len(dict) > 0 {
		logger.Warn("translations.fallback", "tier", TierLocaleDefault, "cause", cause)
		return dict.Clone(), TierLocaleDefault
	}

	system := code
	if r.locales != nil {
		system = r.locales.Default()
	}
	logger.Warn("translations.fallback", "tier", TierSystemDefault, "system_locale", system, "cause", cause)
	return tables[system].Clone(), TierSystemDefault
}

// linearBackOff waits step, 2*step, 3*step and so on.
type linearBackOff struct {
	step     time.Duration
	attempts int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempts++
	return time.Duration(b.attempts) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempts = 0
}
