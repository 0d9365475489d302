package payment

import (
	"context"
	"database/sql"
	"errors"

	"vitrina.shop/internal/ids"
)

var _ OrderStore = (*PGOrderStore)(nil)

// PGOrderStore implements OrderStore using PostgreSQL.
type PGOrderStore struct {
	db *sql.DB
}

func NewPGOrderStore(db *sql.DB) *PGOrderStore {
	return &PGOrderStore{db: db}
}

func (s *PGOrderStore) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = ids.New()
	}
	return s.db.QueryRowContext(ctx,
		`insert into orders(id, username, amount_cents, currency, status, intent_id)
		 values($1,$2,$3,$4,$5,$6)
		 returning created_at, updated_at`,
		o.ID, o.Username, o.AmountCents, o.Currency, o.Status, o.IntentID,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (s *PGOrderStore) FindByIntent(ctx context.Context, intentID string) (*Order, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, amount_cents, currency, status, intent_id, created_at, updated_at
		 from orders where intent_id=$1`, intentID)
	var o Order
	if err := row.Scan(&o.ID, &o.Username, &o.AmountCents, &o.Currency, &o.Status, &o.IntentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *PGOrderStore) SetStatus(ctx context.Context, intentID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`update orders set status=$2, updated_at=now() where intent_id=$1`, intentID, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
