package locale

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Resolve picks the active locale for a request. It returns the entry of
// available matching requested (exactly, case-insensitively, or by base
// language so "bs-Latn-BA" selects "bs"), and defaultLocale otherwise.
// Resolve never fails and never returns a locale outside available unless it
// is the configured default.
func Resolve(requested string, available []string, defaultLocale string) string {
	if match, ok := match(requested, available); ok {
		return match
	}
	return defaultLocale
}

func match(requested string, available []string) (string, bool) {
	requested = strings.TrimSpace(requested)
	if requested == "" || len(available) == 0 {
		return "", false
	}
	for _, candidate := range available {
		if strings.EqualFold(candidate, requested) {
			return candidate, true
		}
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	for _, candidate := range available {
		candidateTag, err := language.Parse(candidate)
		if err != nil {
			continue
		}
		if candidateBase, _ := candidateTag.Base(); candidateBase == base {
			return candidate, true
		}
	}
	return "", false
}

// Resolver binds the supported locale set and the single fallback locale
// used by every read and write path.
type Resolver struct {
	defaultLocale string
	supported     []string
	matcher       language.Matcher
	tags          []language.Tag
}

// NewResolver builds a Resolver. The default locale is added to supported
// when missing so the fallback is always a supported value.
func NewResolver(defaultLocale string, supported []string) *Resolver {
	defaultLocale = strings.TrimSpace(defaultLocale)
	locales := make([]string, 0, len(supported)+1)
	for _, code := range supported {
		if trimmed := strings.TrimSpace(code); trimmed != "" && !slices.Contains(locales, trimmed) {
			locales = append(locales, trimmed)
		}
	}
	if defaultLocale != "" && !slices.Contains(locales, defaultLocale) {
		locales = append([]string{defaultLocale}, locales...)
	}

	r := &Resolver{defaultLocale: defaultLocale, supported: locales}
	for _, code := range locales {
		tag, err := language.Parse(code)
		if err != nil {
			tag = language.Und
		}
		r.tags = append(r.tags, tag)
	}
	r.matcher = language.NewMatcher(r.tags)
	return r
}

// Resolve maps requested onto a supported locale.
func (r *Resolver) Resolve(requested string) string {
	return Resolve(requested, r.supported, r.defaultLocale)
}

// ResolveAcceptLanguage maps an Accept-Language header onto a supported
// locale, falling back to the default.
func (r *Resolver) ResolveAcceptLanguage(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return r.defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return r.defaultLocale
	}
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(r.supported) {
		return r.defaultLocale
	}
	return r.supported[index]
}

// Default returns the fallback locale.
func (r *Resolver) Default() string {
	return r.defaultLocale
}

// Supported returns a copy of the supported locales, default first when it
// was not configured explicitly.
func (r *Resolver) Supported() []string {
	return slices.Clone(r.supported)
}

// IsSupported reports whether code is exactly one of the supported locales.
func (r *Resolver) IsSupported(code string) bool {
	return slices.Contains(r.supported, code)
}
