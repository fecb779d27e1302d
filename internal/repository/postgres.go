package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/entity"
)

const (
	pgCreateGroupQuery = `
		INSERT INTO groups (id, name, default_currency, locale)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	pgGetGroupQuery = `
		SELECT id, name, default_currency, locale, created_at
		FROM groups
		WHERE id = $1`

	pgListNamesQuery = `
		SELECT name
		FROM participants
		WHERE group_id = $1
		ORDER BY position, name`

	pgAddParticipantQuery = `
		INSERT INTO participants (group_id, name, position)
		SELECT $1, $2, COALESCE(MAX(position), -1) + 1
		FROM participants
		WHERE group_id = $1
		ON CONFLICT (group_id, name) DO NOTHING`

	pgCreateExpenseQuery = `
		INSERT INTO expenses (id, group_id, title, amount_cents, currency_code, tx_date, participants, locale, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	pgExpenseColumns = `id, group_id, title, amount_cents, currency_code, tx_date, participants, locale, confidence, created_at`

	pgGetExpenseQuery = `SELECT ` + pgExpenseColumns + ` FROM expenses WHERE id = $1`

	pgListExpensesQuery = `SELECT ` + pgExpenseColumns + ` FROM expenses WHERE group_id = $1 ORDER BY tx_date, created_at`
)

type groupRow struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	DefaultCurrency string    `db:"default_currency"`
	Locale          string    `db:"locale"`
	CreatedAt       time.Time `db:"created_at"`
}

type expenseRow struct {
	ID           uuid.UUID `db:"id"`
	GroupID      uuid.UUID `db:"group_id"`
	Title        string    `db:"title"`
	AmountCents  int64     `db:"amount_cents"`
	CurrencyCode string    `db:"currency_code"`
	TxDate       time.Time `db:"tx_date"`
	Participants []string  `db:"participants"`
	Locale       string    `db:"locale"`
	Confidence   float64   `db:"confidence"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r expenseRow) toEntity() *entity.Expense {
	participants := r.Participants
	if participants == nil {
		participants = []string{}
	}
	return &entity.Expense{
		ID:           r.ID,
		GroupID:      r.GroupID,
		Title:        r.Title,
		AmountCents:  r.AmountCents,
		CurrencyCode: r.CurrencyCode,
		TxDate:       r.TxDate,
		Participants: participants,
		Locale:       r.Locale,
		Confidence:   r.Confidence,
		CreatedAt:    r.CreatedAt,
	}
}

type postgresGroupRepository struct {
	pool   PgxPool
	logger *slog.Logger
}

func NewPostgresGroupRepository(pool PgxPool, logger *slog.Logger) GroupRepository {
	return &postgresGroupRepository{pool: pool, logger: logger}
}

func (r *postgresGroupRepository) CreateGroup(ctx context.Context, group *entity.Group) (*entity.Group, error) {
	g := *group
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if err := r.pool.QueryRow(ctx, pgCreateGroupQuery, g.ID, g.Name, g.DefaultCurrency, g.Locale).Scan(&g.CreatedAt); err != nil {
		r.logger.Error("failed to create group", "name", g.Name, "error", err)
		return nil, fmt.Errorf("%w: create group: %w", common.ErrDatabase, err)
	}
	return &g, nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Group, error) {
	rows, err := r.pool.Query(ctx, pgGetGroupQuery, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get group: %w", common.ErrDatabase, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[groupRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get group: %w", common.ErrDatabase, err)
	}
	return &entity.Group{
		ID:              row.ID,
		Name:            row.Name,
		DefaultCurrency: row.DefaultCurrency,
		Locale:          row.Locale,
		CreatedAt:       row.CreatedAt,
	}, nil
}

type postgresParticipantRepository struct {
	pool   PgxPool
	logger *slog.Logger
}

func NewPostgresParticipantRepository(pool PgxPool, logger *slog.Logger) ParticipantRepository {
	return &postgresParticipantRepository{pool: pool, logger: logger}
}

func (r *postgresParticipantRepository) ListNames(ctx context.Context, groupID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, pgListNamesQuery, groupID)
	if err != nil {
		r.logger.Error("failed to list participants", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: list participants: %w", common.ErrDatabase, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: list participants: %w", common.ErrDatabase, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (r *postgresParticipantRepository) AddParticipant(ctx context.Context, groupID uuid.UUID, name string) error {
	if _, err := r.pool.Exec(ctx, pgAddParticipantQuery, groupID, name); err != nil {
		r.logger.Error("failed to add participant", "group_id", groupID, "error", err)
		return fmt.Errorf("%w: add participant: %w", common.ErrDatabase, err)
	}
	return nil
}

type postgresExpenseRepository struct {
	pool   PgxPool
	logger *slog.Logger
}

func NewPostgresExpenseRepository(pool PgxPool, logger *slog.Logger) ExpenseRepository {
	return &postgresExpenseRepository{pool: pool, logger: logger}
}

func (r *postgresExpenseRepository) CreateExpense(ctx context.Context, expense *entity.Expense) (*entity.Expense, error) {
	e := *expense
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Participants == nil {
		e.Participants = []string{}
	}
	err := r.pool.QueryRow(ctx, pgCreateExpenseQuery,
		e.ID, e.GroupID, e.Title, e.AmountCents, e.CurrencyCode, e.TxDate, e.Participants, e.Locale, e.Confidence,
	).Scan(&e.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create expense", "group_id", e.GroupID, "error", err)
		return nil, fmt.Errorf("%w: create expense: %w", common.ErrDatabase, err)
	}
	return &e, nil
}

func (r *postgresExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	rows, err := r.pool.Query(ctx, pgGetExpenseQuery, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get expense: %w", common.ErrDatabase, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[expenseRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get expense: %w", common.ErrDatabase, err)
	}
	return row.toEntity(), nil
}

func (r *postgresExpenseRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*entity.Expense, error) {
	rows, err := r.pool.Query(ctx, pgListExpensesQuery, groupID)
	if err != nil {
		r.logger.Error("failed to list expenses", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: list expenses: %w", common.ErrDatabase, err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[expenseRow])
	if err != nil {
		return nil, fmt.Errorf("%w: list expenses: %w", common.ErrDatabase, err)
	}
	result := make([]*entity.Expense, len(recs))
	for i, rec := range recs {
		result[i] = rec.toEntity()
	}
	return result, nil
}
