package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	createCommissionTableSQL = `CREATE TABLE IF NOT EXISTS commission_records (
        id                    TEXT PRIMARY KEY,
        recorded_at           TIMESTAMPTZ NOT NULL,
        provider              TEXT NOT NULL,
        carrier_name          TEXT NOT NULL,
        service_name          TEXT NOT NULL,
        customer_price        NUMERIC NOT NULL,
        commission            NUMERIC NOT NULL,
        commission_percentage NUMERIC NOT NULL,
        currency              TEXT NOT NULL,
        shipment_id           TEXT,
        customer_email        TEXT,
        route                 TEXT NOT NULL DEFAULT ''
    );
    CREATE INDEX IF NOT EXISTS commission_records_recorded_at_idx ON commission_records (recorded_at);`

	insertCommissionSQL = `INSERT INTO commission_records (
        id,
        recorded_at,
        provider,
        carrier_name,
        service_name,
        customer_price,
        commission,
        commission_percentage,
        currency,
        shipment_id,
        customer_email,
        route
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
    )
    ON CONFLICT (id) DO NOTHING;`

	listCommissionsSQL = `SELECT
        id,
        recorded_at,
        provider,
        carrier_name,
        service_name,
        customer_price::text,
        commission::text,
        commission_percentage::text,
        currency,
        shipment_id,
        customer_email,
        route
    FROM commission_records
    ORDER BY recorded_at, id;`

	countCommissionsSQL = `SELECT COUNT(*) FROM commission_records;`
)

// Store keeps commission records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the commission table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, createCommissionTableSQL); execErr != nil {
		return fmt.Errorf("ensure commission schema: %w", execErr)
	}
	return nil
}

// LoadCommissions reads every record ordered by time.
func (s *Store) LoadCommissions(ctx context.Context) ([]CommissionRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listCommissionsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list commissions: %w", queryErr)
	}
	defer rows.Close()

	records := make([]CommissionRecord, 0)
	for rows.Next() {
		rec, scanErr := scanCommission(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// SaveCommissions inserts records not yet stored. The table is append-only,
// so existing ids are left untouched.
func (s *Store) SaveCommissions(ctx context.Context, records []CommissionRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commission tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		if _, execErr := tx.Exec(ctx, insertCommissionSQL,
			rec.ID,
			rec.Timestamp,
			rec.Provider,
			rec.CarrierName,
			rec.ServiceName,
			rec.CustomerPrice.String(),
			rec.Commission.String(),
			rec.CommissionPercentage.String(),
			rec.Currency,
			rec.ShipmentID,
			rec.CustomerEmail,
			rec.Route,
		); execErr != nil {
			return fmt.Errorf("insert commission %s: %w", rec.ID, execErr)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit commissions: %w", err)
	}
	return nil
}

// CountCommissions counts stored records.
func (s *Store) CountCommissions(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countCommissionsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count commissions: %w", scanErr)
	}
	return count, nil
}

func scanCommission(rows pgx.Rows) (CommissionRecord, error) {
	var (
		id            string
		recordedAt    time.Time
		provider      string
		carrier       string
		service       string
		priceStr      string
		commissionStr string
		pctStr        string
		currency      string
		shipmentID    sql.NullString
		email         sql.NullString
		route         string
	)

	if err := rows.Scan(
		&id,
		&recordedAt,
		&provider,
		&carrier,
		&service,
		&priceStr,
		&commissionStr,
		&pctStr,
		&currency,
		&shipmentID,
		&email,
		&route,
	); err != nil {
		return CommissionRecord{}, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return CommissionRecord{}, fmt.Errorf("parse customer price: %w", err)
	}
	commission, err := decimal.NewFromString(commissionStr)
	if err != nil {
		return CommissionRecord{}, fmt.Errorf("parse commission: %w", err)
	}
	pct, err := decimal.NewFromString(pctStr)
	if err != nil {
		return CommissionRecord{}, fmt.Errorf("parse commission percentage: %w", err)
	}

	rec := CommissionRecord{
		ID:                   id,
		Timestamp:            recordedAt.UTC(),
		Provider:             provider,
		CarrierName:          carrier,
		ServiceName:          service,
		CustomerPrice:        price,
		Commission:           commission,
		CommissionPercentage: pct,
		Currency:             currency,
		Route:                route,
	}
	if shipmentID.Valid {
		value := shipmentID.String
		rec.ShipmentID = &value
	}
	if email.Valid {
		value := email.String
		rec.CustomerEmail = &value
	}
	return rec, nil
}

var _ CommissionStore = (*Store)(nil)
