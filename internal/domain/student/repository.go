package student

import (
	"context"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракт хранилища учеников. Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the Roster Store.
type Repository interface {
	// GetStudents возвращает список учеников области в порядке регистрации.
	GetStudents(ctx context.Context, area shared.Area) ([]*Student, error)

	// Create сохраняет нового ученика и возвращает его ID.
	Create(ctx context.Context, s *Student) (string, error)

	// CountByArea возвращает количество учеников по каждой области.
	CountByArea(ctx context.Context) (map[shared.Area]int, error)
}

// RosterCache is an optional read-through cache in front of a Repository.
type RosterCache interface {
	Get(ctx context.Context, area shared.Area) ([]*Student, error)
	Set(ctx context.Context, area shared.Area, roster []*Student) error
	Invalidate(ctx context.Context, area shared.Area) error
}
