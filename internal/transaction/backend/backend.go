// Package backend opens the configured transaction store.
package backend

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/salesdash/internal/config"
	"github.com/MrJamesThe3rd/salesdash/internal/database"
	"github.com/MrJamesThe3rd/salesdash/internal/mongodb"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction/mongostore"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction/store"
)

// Store is implemented by every transaction backend.
type Store interface {
	transaction.Repository
	UpsertTransactions(ctx context.Context, txs []*transaction.Transaction) error
	Ping(ctx context.Context) error
}

var (
	_ Store = (*store.Store)(nil)
	_ Store = (*mongostore.Store)(nil)
)

// Open connects to the backend named by cfg.Store.Backend and prepares its
// schema. The returned func releases the connection.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}

		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, nil, err
		}

		return store.New(db), func() { db.Close() }, nil
	case config.BackendMongo:
		client, err := mongodb.New(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}

		disconnect := func() { _ = client.Disconnect(context.Background()) }

		s := mongostore.New(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		if err := s.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}

		return s, disconnect, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
