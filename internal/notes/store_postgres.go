package notes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 10 * time.Second

// BundleQuery reads every stored bundle. Rows are ordered by name so the
// catalog version does not depend on storage order.
const BundleQuery = `SELECT name, body FROM notes_bundles ORDER BY name ASC`

// LoadPostgres builds the catalog from bundle documents stored in the
// notes_bundles table that database.Migrate creates.
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool) (*Catalog, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := pool.Query(ctx, BundleQuery)
	if err != nil {
		return nil, fmt.Errorf("query notes bundles: %w", err)
	}
	defer rows.Close()

	var bundles []NamedBundle
	for rows.Next() {
		var nb NamedBundle
		var body string
		if err := rows.Scan(&nb.Name, &body); err != nil {
			return nil, fmt.Errorf("scan notes bundle: %w", err)
		}
		nb.Data = []byte(body)
		bundles = append(bundles, nb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes bundles: %w", err)
	}

	c, err := LoadBytes(bundles...)
	if err != nil {
		return nil, err
	}

	slog.Info("notes loaded from database", "bundles", len(bundles), "notes", c.Len(), "version", c.Version())
	return c, nil
}
