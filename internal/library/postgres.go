package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

const qListDocuments = `--sql 57523147-ae92-4e26-9bba-610e802b1246
select id, title, updated_at
from script_documents
order by updated_at desc;
`

const qGetDocument = `--sql 52903c28-eb8f-49f4-bfd0-a6d3bf7aba33
select payload
from script_documents
where id = $1::uuid;
`

// Postgres reads script documents persisted by the authoring side of the
// application. This package only ever reads; imports never write back.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) List(ctx context.Context) ([]Meta, error) {
	rows, err := p.pool.Query(ctx, qListDocuments)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var items []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.Title, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	row := p.pool.QueryRow(ctx, qGetDocument, id)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return payload, nil
}

var _ Store = (*Postgres)(nil)
