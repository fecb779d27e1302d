package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/entity"
)

const (
	sqliteExpenseColumns = `id, group_id, title, amount_cents, currency_code, tx_date, participants, locale, confidence, created_at`

	sqliteAddParticipantQuery = `
		INSERT INTO participants (group_id, name, position)
		SELECT ?1, ?2, COALESCE(MAX(position), -1) + 1
		FROM participants
		WHERE group_id = ?1
		ON CONFLICT (group_id, name) DO NOTHING`
)

type sqliteGroupRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteGroupRepository(db *sql.DB, logger *slog.Logger) GroupRepository {
	return &sqliteGroupRepository{db: db, logger: logger}
}

func (r *sqliteGroupRepository) CreateGroup(ctx context.Context, group *entity.Group) (*entity.Group, error) {
	g := *group
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, default_currency, locale, created_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID.String(), g.Name, g.DefaultCurrency, g.Locale, g.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		r.logger.Error("failed to create group", "name", g.Name, "error", err)
		return nil, fmt.Errorf("%w: create group: %w", common.ErrDatabase, err)
	}
	return &g, nil
}

func (r *sqliteGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Group, error) {
	var (
		g       entity.Group
		rawID   string
		created string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, default_currency, locale, created_at FROM groups WHERE id = ?`, id.String(),
	).Scan(&rawID, &g.Name, &g.DefaultCurrency, &g.Locale, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get group: %w", common.ErrDatabase, err)
	}
	if g.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("%w: group id: %w", common.ErrDatabase, err)
	}
	g.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &g, nil
}

type sqliteParticipantRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteParticipantRepository(db *sql.DB, logger *slog.Logger) ParticipantRepository {
	return &sqliteParticipantRepository{db: db, logger: logger}
}

func (r *sqliteParticipantRepository) ListNames(ctx context.Context, groupID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM participants WHERE group_id = ? ORDER BY position, name`, groupID.String())
	if err != nil {
		r.logger.Error("failed to list participants", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: list participants: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan participant: %w", common.ErrDatabase, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list participants: %w", common.ErrDatabase, err)
	}
	return names, nil
}

func (r *sqliteParticipantRepository) AddParticipant(ctx context.Context, groupID uuid.UUID, name string) error {
	if _, err := r.db.ExecContext(ctx, sqliteAddParticipantQuery, groupID.String(), name); err != nil {
		r.logger.Error("failed to add participant", "group_id", groupID, "error", err)
		return fmt.Errorf("%w: add participant: %w", common.ErrDatabase, err)
	}
	return nil
}

type sqliteExpenseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteExpenseRepository(db *sql.DB, logger *slog.Logger) ExpenseRepository {
	return &sqliteExpenseRepository{db: db, logger: logger}
}

func (r *sqliteExpenseRepository) CreateExpense(ctx context.Context, expense *entity.Expense) (*entity.Expense, error) {
	e := *expense
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Participants == nil {
		e.Participants = []string{}
	}
	e.CreatedAt = time.Now().UTC()

	participants, err := json.Marshal(e.Participants)
	if err != nil {
		return nil, fmt.Errorf("%w: encode participants: %w", common.ErrInvalidInput, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+sqliteExpenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.GroupID.String(), e.Title, e.AmountCents, e.CurrencyCode,
		e.TxDate.Format(time.DateOnly), string(participants), e.Locale, e.Confidence,
		e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		r.logger.Error("failed to create expense", "group_id", e.GroupID, "error", err)
		return nil, fmt.Errorf("%w: create expense: %w", common.ErrDatabase, err)
	}
	return &e, nil
}

func (r *sqliteExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteExpenseColumns+` FROM expenses WHERE id = ?`, id.String())
	e, err := scanSQLiteExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get expense: %w", common.ErrDatabase, err)
	}
	return e, nil
}

func (r *sqliteExpenseRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*entity.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteExpenseColumns+` FROM expenses WHERE group_id = ? ORDER BY tx_date, created_at`, groupID.String())
	if err != nil {
		r.logger.Error("failed to list expenses", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: list expenses: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	result := []*entity.Expense{}
	for rows.Next() {
		e, err := scanSQLiteExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan expense: %w", common.ErrDatabase, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list expenses: %w", common.ErrDatabase, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteExpense(s rowScanner) (*entity.Expense, error) {
	var (
		e                          entity.Expense
		id, groupID, date, created string
		participants               string
	)
	if err := s.Scan(&id, &groupID, &e.Title, &e.AmountCents, &e.CurrencyCode,
		&date, &participants, &e.Locale, &e.Confidence, &created); err != nil {
		return nil, err
	}

	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if e.GroupID, err = uuid.Parse(groupID); err != nil {
		return nil, err
	}
	if e.TxDate, err = time.Parse(time.DateOnly, date); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return nil, err
	}
	if e.Participants == nil {
		e.Participants = []string{}
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &e, nil
}
