package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"transcode-worker/internal/logging"
	"transcode-worker/internal/metrics"
)

// Client issues the single catalog mutation this worker is allowed to make:
// pointing a video row at its published thumbnail and playlist. It never
// creates or deletes rows.
type Client struct {
	db *sql.DB
}

// Open connects to the video catalog and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Client, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	// One connection per in-flight record is plenty; the worker only ever
	// runs one short UPDATE per successful pipeline.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	return &Client{db: db}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// MarkReady updates the row whose original_key matches stem, setting the
// published thumbnail and playlist keys and refreshing the update timestamp.
// A missing row is logged but not treated as a failure: the upload may have
// raced the web application's insert, and redelivery would not help.
func (c *Client) MarkReady(ctx context.Context, stem, thumbnailKey, playlistKey string) error {
	const query = `
		UPDATE videos
		SET thumbnail_key = $1,
		    m3u8_key = $2,
		    updated_at = NOW()
		WHERE original_key = $3
	`

	res, err := c.db.ExecContext(ctx, query, thumbnailKey, playlistKey, stem)
	if err != nil {
		metrics.CatalogUpdatesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("update catalog row %q: %w", stem, err)
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		logging.Warn("Catalog: no row matched original_key=%q; pointers not recorded", stem)
	}

	metrics.CatalogUpdatesTotal.WithLabelValues("success").Inc()
	logging.Debug("Catalog: marked %q ready (thumbnail=%s, playlist=%s)", stem, thumbnailKey, playlistKey)
	return nil
}
