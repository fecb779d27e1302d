package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/expense-assistant/internal/entity"
)

// GroupRepository stores expense groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *entity.Group) (*entity.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Group, error)
}

// ParticipantRepository lists and adds group members in canonical order.
type ParticipantRepository interface {
	ListNames(ctx context.Context, groupID uuid.UUID) ([]string, error)
	AddParticipant(ctx context.Context, groupID uuid.UUID, name string) error
}

// ExpenseRepository persists confirmed expenses. Nothing writes here before
// the user confirms.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, expense *entity.Expense) (*entity.Expense, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*entity.Expense, error)
}
