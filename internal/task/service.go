package task

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Store is the persistence contract the service depends on. Every
// operation is parameterized by the owner resolved from the request
// credential; implementations must bind it into the lookup itself.
type Store interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]Task, error)
	Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch UpdatePatch) (*Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
}

// Service validates task operations and delegates to the store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns the owner's tasks, most recently created first. Ordering
// is applied here with a stable sort; the store returns them unordered.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	tasks, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// Create validates the input, applies field defaults and creates the task
// on behalf of ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}

	if in.Priority == "" {
		in.Priority = PriorityLow
	}
	if !in.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	if in.Status == "" {
		in.Status = StatusPending
	}
	if !in.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	return s.store.Create(ctx, ownerID, in)
}

// Update applies a partial patch to the owner's task. The owner itself is
// not patchable; ownership is fixed at creation.
func (s *Service) Update(ctx context.Context, ownerID, taskID uuid.UUID, patch UpdatePatch) (*Task, error) {
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &trimmed
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	return s.store.Update(ctx, ownerID, taskID, patch)
}

// Delete removes the owner's task.
func (s *Service) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	return s.store.Delete(ctx, ownerID, taskID)
}
