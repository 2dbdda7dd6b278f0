package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lfmonteiro/taskdeck/store"
)

type (
	// Service owns the business rules around tasks: every operation
	// is scoped to the caller passed in by the request filter, and
	// mutations are validated before the store is touched. A missing
	// task and a task owned by someone else surface as the same
	// store.TaskNotFound, existence of other users' tasks must not
	// leak.
	Service struct {
		store *store.Store
		now   func() time.Time
	}

	// Input carries the mutable fields of a task as provided by the
	// client.
	Input struct {
		Title       string
		Description string
		DueDate     Date
	}

	// View is the task shape returned to clients. The owner id never
	// leaves the service.
	View struct {
		ID          uuid.UUID `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		DueDate     Date      `json:"dueDate"`
		IsCompleted bool      `json:"isCompleted"`
	}
)

func NewService(st *store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// List returns every task owned by caller ordered by due date
// ascending.
func (s *Service) List(ctx context.Context, caller uuid.UUID) ([]View, error) {
	tasks, err := s.store.ListTasks(ctx, caller)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(tasks))
	for _, t := range tasks {
		view, err := asView(t)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, taskID, caller uuid.UUID) (View, error) {
	t, err := s.store.GetTask(ctx, taskID, caller)
	if err != nil {
		return View{}, err
	}
	return asView(t)
}

func (s *Service) Create(ctx context.Context, caller uuid.UUID, in Input) (View, error) {
	if err := validate(in, DateOf(s.now())); err != nil {
		return View{}, err
	}
	t := store.Task{
		ID:          uuid.New(),
		OwnerID:     caller,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate.String(),
		Completed:   false,
	}
	if err := s.store.InsertTask(ctx, t); err != nil {
		return View{}, err
	}
	return asView(t)
}

// Update overwrites every mutable field of the task. The ownership
// check and the write are a single scoped statement, so a task that is
// not owned by caller is reported missing and nothing is written.
func (s *Service) Update(ctx context.Context, taskID, caller uuid.UUID, in Input, completed bool) (View, error) {
	if err := validate(in, DateOf(s.now())); err != nil {
		return View{}, err
	}
	t := store.Task{
		ID:          taskID,
		OwnerID:     caller,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate.String(),
		Completed:   completed,
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return View{}, err
	}
	return asView(t)
}

func (s *Service) Delete(ctx context.Context, taskID, caller uuid.UUID) error {
	return s.store.DeleteTask(ctx, taskID, caller)
}

func asView(t store.Task) (View, error) {
	due, err := ParseDate(t.DueDate)
	if err != nil {
		return View{}, fmt.Errorf("unable to decode due date of task %v, cause %w", t.ID, err)
	}
	return View{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     due,
		IsCompleted: t.Completed,
	}, nil
}
