// SPDX-License-Identifier: MIT

// Package catalog reads the streaming service catalog from Postgres.
// The catalog is the pricing authority: availability data from providers
// is only actionable for services that exist here and are active.
package catalog

import (
	"context"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/model"
)

const queryTimeout = 5 * time.Second

// ServiceRef identifies a catalog service by its stable ID and display name.
// It is the value side of the provider-native ID mapping.
type ServiceRef struct {
	ID   string
	Name string
}

// Store is a read-only view over the streaming_services table.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New opens a connection pool against url and verifies it with a ping.
// Monetary columns are decoded through shopspring decimals so prices
// survive the round trip without float drift.
func New(ctx context.Context, url string, logger zerolog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDatabase, "invalid database URL", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDatabase, "failed to create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperr.Wrap(apperr.ErrDatabase, "database unreachable", err)
	}

	logger.Info().
		Str("event", "catalog.connected").
		Msg("service catalog connected")

	return &Store{pool: pool, log: logger}, nil
}

// ActiveServices returns the active catalog rows for the given service IDs,
// ordered by ID. Unknown and inactive IDs are silently absent from the
// result. An empty input yields an empty slice without touching the pool.
func (s *Store) ActiveServices(ctx context.Context, ids []string) ([]model.ServiceInfo, error) {
	if len(ids) == 0 {
		return []model.ServiceInfo{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, base_monthly_cost
		   FROM streaming_services
		  WHERE active AND id = ANY($1)
		  ORDER BY id`, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDatabase, "failed to query streaming services", err)
	}
	defer rows.Close()

	services := []model.ServiceInfo{}
	for rows.Next() {
		info, err := scanServiceInfo(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrDatabase, "failed to scan streaming service row", err)
		}
		services = append(services, info)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrDatabase, "failed to read streaming service rows", err)
	}
	return services, nil
}

// NativeServiceMappings returns the provider-native numeric service IDs of
// every active catalog row that carries one, keyed by the native ID.
func (s *Store) NativeServiceMappings(ctx context.Context) (map[int64]ServiceRef, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT native_service_id, id, name
		   FROM streaming_services
		  WHERE active AND native_service_id IS NOT NULL`)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDatabase, "failed to query service mappings", err)
	}
	defer rows.Close()

	mappings := make(map[int64]ServiceRef)
	for rows.Next() {
		nativeID, ref, err := scanServiceRef(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrDatabase, "failed to scan service mapping row", err)
		}
		mappings[nativeID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrDatabase, "failed to read service mapping rows", err)
	}
	return mappings, nil
}

// Ping reports whether the pool can still reach the database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperr.Wrap(apperr.ErrDatabase, "database unreachable", err)
	}
	return nil
}

// Close releases the pool. Safe to call once during shutdown.
func (s *Store) Close() {
	s.pool.Close()
}

// rowScanner is the slice of pgx.Rows the mapping functions need. Keeping
// it minimal lets the scan logic be tested without a live pool.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanServiceInfo(row rowScanner) (model.ServiceInfo, error) {
	var (
		info model.ServiceInfo
		cost decimal.Decimal
	)
	if err := row.Scan(&info.ID, &info.Name, &cost); err != nil {
		return model.ServiceInfo{}, err
	}
	info.MonthlyCost = model.Price{Decimal: cost}
	return info, nil
}

func scanServiceRef(row rowScanner) (int64, ServiceRef, error) {
	var (
		nativeID int64
		ref      ServiceRef
	)
	if err := row.Scan(&nativeID, &ref.ID, &ref.Name); err != nil {
		return 0, ServiceRef{}, err
	}
	return nativeID, ref, nil
}
