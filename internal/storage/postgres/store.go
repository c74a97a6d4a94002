// Package postgres stores cards in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/cardex/internal/card"
)

//go:embed schema.sql
var schema string

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PoolConfig tunes the connection pool. Zero values keep pgx defaults.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Open parses url, applies cfg, connects and pings.
func Open(ctx context.Context, url string, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Store implements the card repository on PostgreSQL.
type Store struct {
	db DBTX
}

// New wraps db, usually a *pgxpool.Pool.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Migrate creates the table and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate business_cards: %w", err)
	}
	return nil
}

const cardColumns = `id, name, gender, date_of_birth, email, phone_number, address, photo, last_update_at, is_deleted`

// The conflict target is the partial unique index on lower(email), so a
// soft-deleted card never blocks a new one with the same address.
const upsertSQL = `
INSERT INTO business_cards (id, name, gender, date_of_birth, email, phone_number, address, photo, last_update_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT ((lower(email))) WHERE NOT is_deleted DO UPDATE SET
    name           = EXCLUDED.name,
    gender         = EXCLUDED.gender,
    date_of_birth  = EXCLUDED.date_of_birth,
    email          = EXCLUDED.email,
    phone_number   = EXCLUDED.phone_number,
    address        = EXCLUDED.address,
    photo          = EXCLUDED.photo,
    last_update_at = now()
RETURNING ` + cardColumns

// CreateOrUpdate upserts c by case-insensitive email.
func (s *Store) CreateOrUpdate(ctx context.Context, c card.Card) (card.Card, error) {
	row := s.db.QueryRow(ctx, upsertSQL,
		uuid.New(),
		c.Name,
		int16(c.Gender),
		c.DateOfBirth,
		strings.TrimSpace(c.Email),
		c.PhoneNumber,
		c.Address,
		c.Photo,
	)
	stored, err := scanCard(row)
	if err != nil {
		return card.Card{}, fmt.Errorf("upsert card %q: %w", c.Email, err)
	}
	return stored, nil
}

// FindByID returns a live card or card.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (card.Card, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM business_cards WHERE id = $1 AND NOT is_deleted`, id)
	c, err := scanCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return card.Card{}, card.New(card.KindBusinessCardNotFound, "id %s", id)
	}
	if err != nil {
		return card.Card{}, fmt.Errorf("find card %s: %w", id, err)
	}
	return c, nil
}

// FindByIDs returns the live cards among ids, or all live cards when ids is
// empty, ordered by name.
func (s *Store) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]card.Card, error) {
	sql := `SELECT ` + cardColumns + ` FROM business_cards WHERE NOT is_deleted`
	var args []any
	if len(ids) > 0 {
		sql += ` AND id = ANY($1::uuid[])`
		args = append(args, uuidStrings(ids))
	}
	sql += ` ORDER BY lower(name), id`

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find cards: %w", err)
	}
	return collectCards(rows)
}

// DeleteMany soft-deletes the live cards among ids, or removes them when
// force is set, and returns the ids that matched.
func (s *Store) DeleteMany(ctx context.Context, ids []uuid.UUID, force bool) ([]uuid.UUID, error) {
	sql := `UPDATE business_cards SET is_deleted = true, last_update_at = now()
WHERE id = ANY($1::uuid[]) AND NOT is_deleted RETURNING id`
	if force {
		sql = `DELETE FROM business_cards WHERE id = ANY($1::uuid[]) AND NOT is_deleted RETURNING id`
	}

	rows, err := s.db.Query(ctx, sql, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("delete cards: %w", err)
	}
	deleted, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("delete cards: %w", err)
	}
	if deleted == nil {
		deleted = []uuid.UUID{}
	}
	return deleted, nil
}

// List returns one page of live cards.
func (s *Store) List(ctx context.Context, q card.ListQuery) (card.Page, error) {
	q = q.Normalize()
	where, args := searchClause(card.ParseSearch(q.Search))

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM business_cards WHERE `+where, args...).Scan(&total); err != nil {
		return card.Page{}, fmt.Errorf("count cards: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM business_cards WHERE %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		cardColumns, where, orderColumn(q.OrderBy), strings.ToUpper(q.OrderDirection), len(args)+1, len(args)+2)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return card.Page{}, fmt.Errorf("list cards: %w", err)
	}
	cards, err := collectCards(rows)
	if err != nil {
		return card.Page{}, err
	}
	return card.Page{Cards: cards, Page: q.Page, PageSize: q.PageSize, Total: total}, nil
}

// searchClause builds the WHERE clause for a List search. Matching uses
// strpos so the term is never interpreted as a LIKE pattern.
func searchClause(s card.Search) (string, []any) {
	if s.Text == "" {
		return `NOT is_deleted`, nil
	}
	clauses := []string{
		`strpos(lower(name), $1) > 0`,
		`strpos(lower(email), $1) > 0`,
		`strpos(lower(phone_number), $1) > 0`,
		`strpos(extract(year FROM date_of_birth)::int::text, $1) > 0`,
		`strpos(extract(day FROM date_of_birth)::int::text, $1) > 0`,
	}
	args := []any{s.Text}
	if s.Gender != card.GenderInvalid {
		args = append(args, int16(s.Gender))
		clauses = append(clauses, fmt.Sprintf(`gender = $%d`, len(args)))
	}
	if s.Month != 0 {
		args = append(args, int(s.Month))
		clauses = append(clauses, fmt.Sprintf(`extract(month FROM date_of_birth)::int = $%d`, len(args)))
	}
	return `NOT is_deleted AND (` + strings.Join(clauses, " OR ") + `)`, args
}

func orderColumn(orderBy string) string {
	switch strings.ToLower(orderBy) {
	case "email":
		return "lower(email)"
	case "dateofbirth":
		return "date_of_birth"
	case "lastupdateat":
		return "last_update_at"
	default:
		return "lower(name)"
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func scanCard(row pgx.Row) (card.Card, error) {
	var (
		c      card.Card
		gender int16
	)
	err := row.Scan(&c.ID, &c.Name, &gender, &c.DateOfBirth, &c.Email,
		&c.PhoneNumber, &c.Address, &c.Photo, &c.LastUpdateAt, &c.Deleted)
	if err != nil {
		return card.Card{}, err
	}
	c.Gender = card.Gender(gender)
	c.DateOfBirth = c.DateOfBirth.UTC()
	return c, nil
}

func collectCards(rows pgx.Rows) ([]card.Card, error) {
	defer rows.Close()

	out := make([]card.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cards: %w", err)
	}
	return out, nil
}
