package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"studio/internal/domain"
)

const qSelectRemaining = `--sql 692fe9bb-a64d-4596-ae57-157b19da3abc
select greatest(daily_limit - used, 0)
from usage_ledger
where user_id = $1::uuid and feature = $2::text and day = current_date;
`

const qUpsertDebit = `--sql 8d303178-d9ad-4ad6-9de9-2ea3f9a0c33b
insert into usage_ledger(user_id, feature, day, used, daily_limit)
values ($1::uuid, $2::text, current_date, $3::int, $4::int)
on conflict (user_id, feature, day)
do update set used = usage_ledger.used + excluded.used;
`

// Postgres is the production ledger. Rows are keyed by user, feature, and
// day; a missing row means the user has the full daily limit available.
type Postgres struct {
	pool         *pgxpool.Pool
	defaultLimit int
	logger       zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, defaultLimit int, logger zerolog.Logger) *Postgres {
	return &Postgres{pool: pool, defaultLimit: defaultLimit, logger: logger}
}

func (p *Postgres) Check(ctx context.Context, userID, feature string, n int) error {
	remaining := p.defaultLimit
	row := p.pool.QueryRow(ctx, qSelectRemaining, userID, feature)
	if err := row.Scan(&remaining); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("quota lookup: %w", err)
		}
		remaining = p.defaultLimit
	}
	if n > remaining {
		return fmt.Errorf("%w: need %d, %d remaining", domain.ErrQuotaDenied, n, remaining)
	}
	return nil
}

func (p *Postgres) Debit(ctx context.Context, userID, feature string, n int) error {
	if _, err := p.pool.Exec(ctx, qUpsertDebit, userID, feature, n, p.defaultLimit); err != nil {
		p.logger.Error().Err(err).Str("user_id", userID).Str("feature", feature).Msg("quota: debit failed")
		return fmt.Errorf("quota debit: %w", err)
	}
	return nil
}

var _ Service = (*Postgres)(nil)
