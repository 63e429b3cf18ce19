package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	presentationCollection = "portal_presentation"
	textCollection         = "portal_settings"
)

// MongoRepository stores settings in two collections.
type MongoRepository struct {
	presentation *mongo.Collection
	texts        *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		presentation: db.Collection(presentationCollection),
		texts:        db.Collection(textCollection),
	}
}

// EnsureMongoIndexes makes the locale of text records unique.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(textCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "locale", Value: 1}},
		Options: options.Index().SetName("locale").SetUnique(true),
	})
	return err
}

type presentationDocument struct {
	ID           string    `bson:"_id"`
	Logo         string    `bson:"logo"`
	PrimaryColor string    `bson:"primary_color"`
	AccentColor  string    `bson:"accent_color"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type textDocument struct {
	ID              string    `bson:"_id"`
	Locale          string    `bson:"locale"`
	SiteName        string    `bson:"site_name"`
	SiteDescription string    `bson:"site_description"`
	ContactEmail    string    `bson:"contact_email"`
	ContactPhone    string    `bson:"contact_phone"`
	Address         string    `bson:"address"`
	Social          Social    `bson:"social"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toPresentationDocument(presentation *Presentation) presentationDocument {
	return presentationDocument{
		ID:           presentation.ID.String(),
		Logo:         presentation.Logo,
		PrimaryColor: presentation.PrimaryColor,
		AccentColor:  presentation.AccentColor,
		UpdatedAt:    presentation.UpdatedAt,
	}
}

func (d presentationDocument) toPresentation() (*Presentation, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("presentation document %q: %w", d.ID, err)
	}
	return &Presentation{
		ID:           id,
		Logo:         d.Logo,
		PrimaryColor: d.PrimaryColor,
		AccentColor:  d.AccentColor,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func toTextDocument(text *LocaleText) textDocument {
	return textDocument{
		ID:              text.ID.String(),
		Locale:          text.Locale,
		SiteName:        text.SiteName,
		SiteDescription: text.SiteDescription,
		ContactEmail:    text.ContactEmail,
		ContactPhone:    text.ContactPhone,
		Address:         text.Address,
		Social:          text.Social,
		UpdatedAt:       text.UpdatedAt,
	}
}

func (d textDocument) toLocaleText() (*LocaleText, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("settings document %q: %w", d.ID, err)
	}
	return &LocaleText{
		ID:              id,
		Locale:          d.Locale,
		SiteName:        d.SiteName,
		SiteDescription: d.SiteDescription,
		ContactEmail:    d.ContactEmail,
		ContactPhone:    d.ContactPhone,
		Address:         d.Address,
		Social:          d.Social,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

func (r *MongoRepository) GetPresentation(ctx context.Context) (*Presentation, error) {
	var doc presentationDocument
	if err := r.presentation.FindOne(ctx, bson.M{}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("presentation settings", "", "")
		}
		return nil, err
	}
	return doc.toPresentation()
}

func (r *MongoRepository) PutPresentation(ctx context.Context, presentation *Presentation) error {
	doc := toPresentationDocument(presentation)
	_, err := r.presentation.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// PutSettings writes the presentation first and the text second. Standalone
// servers have no multi-document transactions, so a failed text write is
// compensated by restoring the previous presentation document, or removing
// it when there was none.
func (r *MongoRepository) PutSettings(ctx context.Context, presentation *Presentation, text *LocaleText) error {
	doc := toPresentationDocument(presentation)
	var previous presentationDocument
	hadPrevious := true
	if err := r.presentation.FindOne(ctx, bson.M{"_id": doc.ID}).Decode(&previous); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		hadPrevious = false
	}

	if _, err := r.presentation.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true)); err != nil {
		return err
	}
	textErr := r.PutText(ctx, text)
	if textErr == nil {
		return nil
	}

	var restoreErr error
	if hadPrevious {
		_, restoreErr = r.presentation.ReplaceOne(ctx, bson.M{"_id": doc.ID}, previous)
	} else {
		_, restoreErr = r.presentation.DeleteOne(ctx, bson.M{"_id": doc.ID})
	}
	if restoreErr != nil {
		return errors.Join(textErr, fmt.Errorf("restore presentation: %w", restoreErr))
	}
	return textErr
}

func (r *MongoRepository) GetText(ctx context.Context, locale string) (*LocaleText, error) {
	var doc textDocument
	if err := r.texts.FindOne(ctx, bson.M{"locale": locale}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("settings", locale, locale)
		}
		return nil, err
	}
	return doc.toLocaleText()
}

func (r *MongoRepository) PutText(ctx context.Context, text *LocaleText) error {
	doc := toTextDocument(text)
	_, err := r.texts.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}
