package storage

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMongo    = "mongo"
)

// Handle is an established store connection. Exactly one of Bun or Mongo is
// set, matching Provider.
type Handle struct {
	Provider string
	Bun      *bun.DB
	Mongo    *mongo.Database
}

// Close releases the underlying connection.
func (h *Handle) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	var errs []error
	if h.Bun != nil {
		errs = append(errs, h.Bun.Close())
	}
	if h.Mongo != nil {
		errs = append(errs, h.Mongo.Client().Disconnect(ctx))
	}
	return errors.Join(errs...)
}
