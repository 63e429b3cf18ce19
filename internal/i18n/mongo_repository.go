package i18n

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dictionaryCollection = "portal_dictionaries"

// MongoStore implements Store on a MongoDB collection, one document per
// locale.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore binds the store to db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(dictionaryCollection)}
}

// EnsureMongoIndexes makes locale unique.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(dictionaryCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "locale", Value: 1}},
		Options: options.Index().SetName("locale").SetUnique(true),
	})
	return err
}

type dictionaryDocument struct {
	ID        string            `bson:"_id"`
	Locale    string            `bson:"locale"`
	Entries   map[string]string `bson:"translations"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func toDictionaryDocument(record *Record) dictionaryDocument {
	return dictionaryDocument{
		ID:        record.ID.String(),
		Locale:    record.Locale,
		Entries:   record.Entries,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func (d dictionaryDocument) toRecord() (*Record, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	entries := d.Entries
	if entries == nil {
		entries = map[string]string{}
	}
	return &Record{
		ID:        id,
		Locale:    d.Locale,
		Entries:   entries,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, locale string) (*Record, error) {
	var doc dictionaryDocument
	if err := s.collection.FindOne(ctx, bson.M{"locale": locale}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("dictionary", locale, locale)
		}
		return nil, err
	}
	return doc.toRecord()
}

// Put replaces the locale document atomically, inserting it when absent.
func (s *MongoStore) Put(ctx context.Context, record *Record) error {
	doc := toDictionaryDocument(record)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}
