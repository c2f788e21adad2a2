package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/taskboard-api/internal/database"
)

// Repository persists tasks in postgres. Every query binds the owner id
// into the predicate; there is no lookup by task id alone, which is what
// keeps one user's tasks invisible to every other user.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns all tasks belonging to the owner, in no particular order.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	var dbTasks []database.Task
	err := r.db.NewSelect().
		Model(&dbTasks).
		Where("user_id = ?", ownerID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]Task, 0, len(dbTasks))
	for i := range dbTasks {
		tasks = append(tasks, *mapDBTaskToModel(&dbTasks[i]))
	}
	return tasks, nil
}

// Create inserts a new task owned by ownerID. The owner comes from the
// argument only; whatever the client sent is never consulted.
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Task, error) {
	dbTask := &database.Task{
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    string(in.Priority),
		Status:      string(in.Status),
		DueDate:     dateToTime(in.DueDate),
	}

	_, err := r.db.NewInsert().
		Model(dbTask).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return mapDBTaskToModel(dbTask), nil
}

// Update applies a partial patch with a single atomic
// UPDATE ... WHERE id = ? AND user_id = ?. A task that exists but belongs
// to someone else matches zero rows and is reported as ErrNotFound,
// indistinguishable from a task that does not exist.
func (r *Repository) Update(ctx context.Context, ownerID, taskID uuid.UUID, patch UpdatePatch) (*Task, error) {
	dbTask := new(database.Task)
	q := r.db.NewUpdate().
		Model(dbTask).
		Set("updated_at = ?", time.Now())

	if patch.Title != nil {
		q = q.Set("title = ?", *patch.Title)
	}
	if patch.Description != nil {
		q = q.Set("description = ?", *patch.Description)
	}
	if patch.Category != nil {
		q = q.Set("category = ?", *patch.Category)
	}
	if patch.Priority != nil {
		q = q.Set("priority = ?", string(*patch.Priority))
	}
	if patch.Status != nil {
		q = q.Set("status = ?", string(*patch.Status))
	}
	if patch.DueDateSet {
		q = q.Set("due_date = ?", dateToTime(patch.DueDate))
	}

	result, err := q.
		Where("id = ?", taskID).
		Where("user_id = ?", ownerID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBTaskToModel(dbTask), nil
}

// Delete removes the task permanently, under the same compound predicate
// as Update.
func (r *Repository) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("id = ?", taskID).
		Where("user_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func dateToTime(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}

// mapDBTaskToModel converts the database model to the domain model.
func mapDBTaskToModel(dbt *database.Task) *Task {
	var due *Date
	if dbt.DueDate != nil {
		d := DateOf(*dbt.DueDate)
		due = &d
	}
	return &Task{
		ID:          dbt.ID,
		OwnerID:     dbt.UserID,
		Title:       dbt.Title,
		Description: dbt.Description,
		Category:    dbt.Category,
		Priority:    Priority(dbt.Priority),
		Status:      Status(dbt.Status),
		DueDate:     due,
		CreatedAt:   dbt.CreatedAt,
		UpdatedAt:   dbt.UpdatedAt,
	}
}
