package settings

import "context"

// Repository persists the shared presentation record and the per-locale text
// records. Put methods upsert.
type Repository interface {
	GetPresentation(ctx context.Context) (*Presentation, error)
	PutPresentation(ctx context.Context, presentation *Presentation) error
	GetText(ctx context.Context, locale string) (*LocaleText, error)
	PutText(ctx context.Context, text *LocaleText) error
	// PutSettings upserts both records as one unit. When it fails neither
	// write is visible.
	PutSettings(ctx context.Context, presentation *Presentation, text *LocaleText) error
}
