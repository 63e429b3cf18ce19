package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultMongoDatabase = "portal"

// Config selects and addresses a store.
type Config struct {
	Provider string
	DSN      string
	Database string
}

// Schema lists the setup steps run once after a connection is established.
type Schema struct {
	Bun   []func(context.Context, *bun.DB) error
	Mongo []func(context.Context, *mongo.Database) error
}

// Open returns an Opener for cfg.
func Open(cfg Config, setup Schema) Opener {
	return func(ctx context.Context) (*Handle, error) {
		switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
		case ProviderSQLite:
			return openSQL(ctx, ProviderSQLite, "sqlite3", cfg.DSN, sqlitedialect.New(), setup.Bun)
		case ProviderPostgres:
			return openSQL(ctx, ProviderPostgres, "postgres", cfg.DSN, pgdialect.New(), setup.Bun)
		case ProviderMongo:
			return openMongo(ctx, cfg, setup.Mongo)
		default:
			return nil, fmt.Errorf("storage: unsupported provider %q", cfg.Provider)
		}
	}
}

func openSQL(ctx context.Context, provider, driver, dsn string, dialect schema.Dialect, steps []func(context.Context, *bun.DB) error) (*Handle, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", provider, err)
	}
	if provider == ProviderSQLite {
		sqldb.SetMaxOpenConns(1)
	}
	db := bun.NewDB(sqldb, dialect)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", provider, err)
	}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage: schema %s: %w", provider, err)
		}
	}
	return &Handle{Provider: provider, Bun: db}, nil
}

func openMongo(ctx context.Context, cfg Config, steps []func(context.Context, *mongo.Database) error) (*Handle, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("storage: connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("storage: ping mongo: %w", err)
	}
	name := strings.TrimSpace(cfg.Database)
	if name == "" {
		name = defaultMongoDatabase
	}
	db := client.Database(name)
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("storage: indexes mongo: %w", err)
		}
	}
	return &Handle{Provider: ProviderMongo, Mongo: db}, nil
}
