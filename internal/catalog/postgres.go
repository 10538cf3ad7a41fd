// Package catalog loads detail catalogs and existing links from postgres
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roofpedia/copengine/pkg/match"
)

// Source identifiers for the two detail catalogs.
const (
	PrimarySource   = "mrm-cop"
	SecondarySource = "ranz-guide"
)

// Store reads the details and detail_links tables. It is the
// collaborator that supplies catalogs and the exclusion set to the
// matcher; the matcher itself never touches the database.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to postgres and verifies the connection.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("catalog: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Records fetches all detail records belonging to one catalog source.
func (s *Store) Records(ctx context.Context, sourceID string) ([]match.Record, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, code, name, model_url
        FROM details
        WHERE source_id = $1
        ORDER BY code
    `, sourceID)
	if err != nil {
		return nil, fmt.Errorf("catalog: query %s details: %w", sourceID, err)
	}
	defer rows.Close()

	var records []match.Record
	for rows.Next() {
		var rec match.Record
		var modelURL *string
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.Name, &modelURL); err != nil {
			return nil, fmt.Errorf("catalog: scan detail: %w", err)
		}
		rec.HasMedia = modelURL != nil && *modelURL != ""
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read %s details: %w", sourceID, err)
	}

	return records, nil
}

// PrimaryRecords fetches the authoritative COP detail catalog.
func (s *Store) PrimaryRecords(ctx context.Context) ([]match.Record, error) {
	return s.Records(ctx, PrimarySource)
}

// SecondaryRecords fetches the supplementary guide catalog.
func (s *Store) SecondaryRecords(ctx context.Context) ([]match.Record, error) {
	return s.Records(ctx, SecondarySource)
}

// ExistingPairs fetches already-confirmed links as the matcher's
// exclusion set.
func (s *Store) ExistingPairs(ctx context.Context) (match.PairSet, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT primary_detail_id, supplementary_detail_id
        FROM detail_links
    `)
	if err != nil {
		return nil, fmt.Errorf("catalog: query links: %w", err)
	}
	defer rows.Close()

	pairs := make(match.PairSet)
	for rows.Next() {
		var p match.Pair
		if err := rows.Scan(&p.PrimaryID, &p.SecondaryID); err != nil {
			return nil, fmt.Errorf("catalog: scan link: %w", err)
		}
		pairs[p] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read links: %w", err)
	}

	return pairs, nil
}
