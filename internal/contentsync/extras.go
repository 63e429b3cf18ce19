package contentsync

import (
	"context"

	"github.com/goliatone/go-portal/internal/authz"
	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Translations returns the UI dictionary of the requested locale and the
// tier it was served from. Transient store failures are retried within the
// configured budget before an embedded table is served. It never fails.
func (s *Service) Translations(ctx context.Context, requested string) (i18n.Dictionary, i18n.Tier) {
	return s.translations.ResolveWithRetry(ctx, requested)
}

// T translates one key, returning the key itself when it is unknown.
func (s *Service) T(ctx context.Context, requested, key string) string {
	return s.translations.T(ctx, requested, key)
}

// SetupTranslations replaces a locale's dictionary. Admins may always call
// it; anyone else needs the configured setup secret.
func (s *Service) SetupTranslations(ctx context.Context, principal interfaces.Principal, secret, code string, dict i18n.Dictionary) error {
	if !principal.IsAdmin() && !authz.SecretMatches(s.setupSecret, secret) {
		return domain.Forbidden("setup translations")
	}
	return s.translations.Setup(ctx, code, dict)
}

// Settings returns the composed settings of the requested locale.
func (s *Service) Settings(ctx context.Context, requested string) (*settings.Settings, error) {
	return s.settings.Get(ctx, requested)
}

// UpdateSettings writes the shared presentation and the locale's texts.
func (s *Service) UpdateSettings(ctx context.Context, principal interfaces.Principal, requested string, input settings.Settings) (*settings.Settings, error) {
	if err := authz.RequireAdmin(principal, "update settings"); err != nil {
		return nil, err
	}
	return s.settings.Update(ctx, requested, input)
}

// UploadMedia stores an uploaded file and returns the reference to put on
// an item.
func (s *Service) UploadMedia(ctx context.Context, principal interfaces.Principal, name string, payload []byte) (string, error) {
	if err := authz.RequireAdmin(principal, "upload media"); err != nil {
		return "", err
	}
	if s.blobs == nil {
		return "", domain.StoreUnavailable(errNoBlobStore, "upload_media")
	}
	ref, err := s.blobs.Put(ctx, name, payload)
	if err != nil {
		return "", domain.StoreUnavailable(err, "upload_media")
	}
	return ref, nil
}

// ImportAll warms every partition from the legacy snapshot.
func (s *Service) ImportAll(ctx context.Context) (map[content.Partition]int, error) {
	return s.importer.ImportAll(ctx)
}
