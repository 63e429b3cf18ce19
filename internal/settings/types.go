package settings

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	DefaultSiteName        = "Municipality Portal"
	DefaultSiteDescription = "Official website of the Municipality."
	DefaultLogo            = "/images/logo-placeholder.png"
	DefaultPrimaryColor    = "#2563eb"
	DefaultAccentColor     = "#0891b2"
)

// Presentation holds the visual settings shared by every locale.
type Presentation struct {
	bun.BaseModel `bun:"table:portal_presentation,alias:pp" json:"-"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Logo         string    `bun:"logo" json:"logo"`
	PrimaryColor string    `bun:"primary_color,notnull" json:"primary_color"`
	AccentColor  string    `bun:"accent_color,notnull" json:"accent_color"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Social lists the portal's social network links.
type Social struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	YouTube   string `json:"youtube"`
}

// LocaleText holds the translated settings of one locale.
type LocaleText struct {
	bun.BaseModel `bun:"table:portal_settings,alias:ps" json:"-"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Locale          string    `bun:"locale,notnull,unique" json:"locale"`
	SiteName        string    `bun:"site_name,notnull" json:"site_name"`
	SiteDescription string    `bun:"site_description" json:"site_description"`
	ContactEmail    string    `bun:"contact_email" json:"contact_email"`
	ContactPhone    string    `bun:"contact_phone" json:"contact_phone"`
	Address         string    `bun:"address" json:"address"`
	Social          Social    `bun:"social,type:jsonb" json:"social"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Settings is the composed view returned to callers and accepted by Update.
type Settings struct {
	Locale          string `json:"locale"`
	SiteName        string `json:"site_name"`
	SiteDescription string `json:"site_description"`
	Logo            string `json:"logo"`
	PrimaryColor    string `json:"primary_color"`
	AccentColor     string `json:"accent_color"`
	ContactEmail    string `json:"contact_email"`
	ContactPhone    string `json:"contact_phone"`
	Address         string `json:"address"`
	Social          Social `json:"social"`
}

func compose(presentation *Presentation, text *LocaleText) *Settings {
	return &Settings{
		Locale:          text.Locale,
		SiteName:        text.SiteName,
		SiteDescription: text.SiteDescription,
		Logo:            presentation.Logo,
		PrimaryColor:    presentation.PrimaryColor,
		AccentColor:     presentation.AccentColor,
		ContactEmail:    text.ContactEmail,
		ContactPhone:    text.ContactPhone,
		Address:         text.Address,
		Social:          text.Social,
	}
}
