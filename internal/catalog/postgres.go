package catalog

import (
	"context"
	"database/sql"
	"errors"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const productColumns = `id, name, coalesce(description, ''), price_cents, currency, coalesce(image_url, ''), created_at, updated_at`

func (s *PGStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+productColumns+` from products order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGStore) Get(ctx context.Context, id int64) (Product, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+productColumns+` from products where id=$1`, id)
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (s *PGStore) Create(ctx context.Context, p *Product) error {
	return s.db.QueryRowContext(ctx,
		`insert into products(name, description, price_cents, currency, image_url)
		 values($1,$2,$3,$4,$5)
		 returning id, created_at, updated_at`,
		p.Name, p.Description, p.PriceCents, p.Currency, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PGStore) Update(ctx context.Context, p *Product) error {
	err := s.db.QueryRowContext(ctx,
		`update products
		 set name=$2, description=$3, price_cents=$4, currency=$5, image_url=$6, updated_at=now()
		 where id=$1
		 returning created_at, updated_at`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Currency, p.ImageURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from products where id=$1`, id)
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
