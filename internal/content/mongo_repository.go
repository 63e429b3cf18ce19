package content

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

const itemCollection = "portal_items"

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoRepository binds the repository to db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(itemCollection), now: time.Now}
}

// EnsureMongoIndexes creates the partition indexes. The slug index only
// covers documents that carry a slug.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(itemCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "kind", Value: 1}, {Key: "locale", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().
				SetName("partition_slug").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"slug": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "locale", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetName("partition_position"),
		},
	})
	return err
}

type itemDocument struct {
	ID          string     `bson:"_id"`
	Kind        string     `bson:"kind"`
	Locale      string     `bson:"locale"`
	Slug        string     `bson:"slug,omitempty"`
	Title       string     `bson:"title"`
	Subtitle    string     `bson:"subtitle,omitempty"`
	Excerpt     string     `bson:"excerpt,omitempty"`
	Body        string     `bson:"body,omitempty"`
	MediaRef    string     `bson:"media_ref"`
	PublishedAt *time.Time `bson:"published_at,omitempty"`
	StartDate   *time.Time `bson:"start_date,omitempty"`
	EndDate     *time.Time `bson:"end_date,omitempty"`
	Status      string     `bson:"status,omitempty"`
	ButtonText  string     `bson:"button_text,omitempty"`
	ButtonLink  string     `bson:"button_link,omitempty"`
	Position    int        `bson:"position"`
	LegacyID    string     `bson:"legacy_id,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func toDocument(item *Item) itemDocument {
	return itemDocument{
		ID:          item.ID.String(),
		Kind:        string(item.Kind),
		Locale:      item.Locale,
		Slug:        item.Slug,
		Title:       item.Title,
		Subtitle:    item.Subtitle,
		Excerpt:     item.Excerpt,
		Body:        item.Body,
		MediaRef:    item.MediaRef,
		PublishedAt: cloneTime(item.PublishedAt),
		StartDate:   cloneTime(item.StartDate),
		EndDate:     cloneTime(item.EndDate),
		Status:      string(item.Status),
		ButtonText:  item.ButtonText,
		ButtonLink:  item.ButtonLink,
		Position:    item.Position,
		LegacyID:    item.LegacyID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func (d itemDocument) toItem() (*Item, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("item document %q: %w", d.ID, err)
	}
	return &Item{
		ID:          id,
		Kind:        domain.Kind(d.Kind),
		Locale:      d.Locale,
		Slug:        d.Slug,
		Title:       d.Title,
		Subtitle:    d.Subtitle,
		Excerpt:     d.Excerpt,
		Body:        d.Body,
		MediaRef:    d.MediaRef,
		PublishedAt: d.PublishedAt,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Status:      domain.Status(d.Status),
		ButtonText:  d.ButtonText,
		ButtonLink:  d.ButtonLink,
		Position:    d.Position,
		LegacyID:    d.LegacyID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (r *MongoRepository) List(ctx context.Context, kind domain.Kind, locale string) ([]*Item, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"kind": string(kind), "locale": locale},
		options.Find().SetSort(bson.D{
			{Key: "position", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		}),
	)
	if err != nil {
		return nil, err
	}
	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	items := make([]*Item, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()}, "item", id.String(), "")
}

func (r *MongoRepository) GetBySlug(ctx context.Context, kind domain.Kind, locale, slug string) (*Item, error) {
	return r.findOne(ctx, bson.M{"kind": string(kind), "locale": locale, "slug": slug}, string(kind), slug, locale)
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M, resource, key, locale string) (*Item, error) {
	var doc itemDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(resource, key, locale)
		}
		return nil, err
	}
	return doc.toItem()
}

func (r *MongoRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	now := r.now().UTC()
	record := CloneItem(item)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
	if _, err := r.collection.InsertOne(ctx, toDocument(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("item %s or slug %q already exists: %w", record.ID, record.Slug, err)
		}
		return nil, err
	}
	return record, nil
}

func (r *MongoRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	record := CloneItem(item)
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = r.now().UTC()
	}
	var doc itemDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": record.ID.String()},
		editableUpdate(toDocument(record)),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("item", record.ID.String(), record.Locale)
		}
		return nil, err
	}
	return doc.toItem()
}

// editableUpdate builds the $set/$unset pair for the fields an edit may
// change. Blank optional fields are unset to mirror the omitempty tags of a
// freshly inserted document.
func editableUpdate(doc itemDocument) bson.M {
	set := bson.M{
		"title":      doc.Title,
		"media_ref":  doc.MediaRef,
		"updated_at": doc.UpdatedAt,
	}
	unset := bson.M{}
	optional := func(key string, value any, blank bool) {
		if blank {
			unset[key] = ""
			return
		}
		set[key] = value
	}
	optional("slug", doc.Slug, doc.Slug == "")
	optional("subtitle", doc.Subtitle, doc.Subtitle == "")
	optional("excerpt", doc.Excerpt, doc.Excerpt == "")
	optional("body", doc.Body, doc.Body == "")
	optional("published_at", doc.PublishedAt, doc.PublishedAt == nil)
	optional("start_date", doc.StartDate, doc.StartDate == nil)
	optional("end_date", doc.EndDate, doc.EndDate == nil)
	optional("status", doc.Status, doc.Status == "")
	optional("button_text", doc.ButtonText, doc.ButtonText == "")
	optional("button_link", doc.ButtonLink, doc.ButtonLink == "")

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *MongoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("item", id.String(), "")
	}
	return nil
}

// UpdatePositions writes every position in one ordered bulk request. Callers
// serialize per partition, so no concurrent reorder interleaves with it.
func (r *MongoRepository) UpdatePositions(ctx context.Context, partition Partition, positions map[uuid.UUID]int) error {
	if len(positions) == 0 {
		return nil
	}
	now := r.now().UTC()
	models := make([]mongo.WriteModel, 0, len(positions))
	for id, position := range positions {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id.String(), "kind": string(partition.Kind), "locale": partition.Locale}).
			SetUpdate(bson.M{"$set": bson.M{"position": position, "updated_at": now}}))
	}
	res, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return err
	}
	if int(res.MatchedCount) != len(positions) {
		return fmt.Errorf("update positions %s: matched %d of %d items", partition, res.MatchedCount, len(positions))
	}
	return nil
}
