package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/venue-discovery/internal/models"
)

// PostgresStore persists user-owned records in one table keyed by
// (user_id, venue_id, collection). The composite key plus ON CONFLICT
// is what makes migration retries safe.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) List(ctx context.Context, userID string, col models.Collection) ([]models.OwnedRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT venue_id, fields, updated_at FROM user_records WHERE user_id=$1 AND collection=$2 ORDER BY venue_id`,
		userID, string(col))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.OwnedRecord
	for rows.Next() {
		var rec models.OwnedRecord
		var fields []byte
		if err := rows.Scan(&rec.SubjectID, &fields, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.UserID = userID
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &rec.Fields); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Upsert(ctx context.Context, userID string, col models.Collection, rec models.OwnedRecord) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO user_records(user_id, venue_id, collection, fields, updated_at)
		 VALUES($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id, venue_id, collection)
		 DO UPDATE SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at`,
		userID, rec.SubjectID, string(col), fields, time.Now())
	return err
}

func (p *PostgresStore) Delete(ctx context.Context, userID, subjectID string, col models.Collection) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM user_records WHERE user_id=$1 AND venue_id=$2 AND collection=$3`,
		userID, subjectID, string(col))
	return err
}

func (p *PostgresStore) SaveOrder(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO orders(id, user_id, venue_id, items, currency, payment_id, status, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.UserID, o.VenueID, items, o.Currency, o.PaymentID, o.Status, o.CreatedAt, o.UpdatedAt)
	return err
}

func (p *PostgresStore) UpdateOrder(ctx context.Context, o *models.Order) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`,
		o.Status, time.Now(), o.ID)
	return err
}

func (p *PostgresStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	var items []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, venue_id, items, currency, payment_id, status, created_at, updated_at FROM orders WHERE id=$1`,
		id).Scan(&o.ID, &o.UserID, &o.VenueID, &items, &o.Currency, &o.PaymentID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }
