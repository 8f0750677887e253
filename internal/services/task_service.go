package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/repository"
)

var (
	ErrDescriptionRequired = errors.New("description is required")
	ErrDescriptionTooLong  = errors.New("description is too long")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
)

// Task mutation names reported to a MutationObserver
const (
	OpAdd            = "add"
	OpToggleComplete = "toggle_completed"
	OpTogglePriority = "toggle_priority"
	OpRemove         = "remove"
)

// MutationObserver is told about every persisted task mutation.
type MutationObserver interface {
	ObserveTaskMutation(op string)
}

// Progress counts today's completed tasks against all of today's tasks.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// TaskService hands out per-owner task lists.
type TaskService struct {
	repo     repository.TaskRepository
	location *time.Location
	now      Clock
	observer MutationObserver

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// TaskOption configures a TaskService.
type TaskOption func(*TaskService)

// WithClock overrides the time source.
func WithClock(now Clock) TaskOption {
	return func(s *TaskService) {
		s.now = now
	}
}

// WithMutationObserver registers an observer for persisted mutations.
func WithMutationObserver(o MutationObserver) TaskOption {
	return func(s *TaskService) {
		s.observer = o
	}
}

// NewTaskService creates a new TaskService. loc decides what "today" means.
func NewTaskService(repo repository.TaskRepository, loc *time.Location, opts ...TaskOption) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	s := &TaskService{
		repo:     repo,
		location: loc,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the owner's collection into memory.
func (s *TaskService) Open(ctx context.Context, owner string) (*TaskList, error) {
	tasks, err := s.repo.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return &TaskList{svc: s, owner: owner, tasks: tasks}, nil
}

// Update opens the owner's collection and runs fn while no other Update for
// the same owner runs in this process.
func (s *TaskService) Update(ctx context.Context, owner string, fn func(*TaskList) error) error {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	list, err := s.Open(ctx, owner)
	if err != nil {
		return err
	}
	return fn(list)
}

// Today returns the current calendar date in the service's location.
func (s *TaskService) Today() string {
	return models.DateOf(s.now().In(s.location))
}

func (s *TaskService) ownerLock(owner string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[owner]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[owner] = lock
	}
	return lock
}

func (s *TaskService) observe(op string) {
	if s.observer != nil {
		s.observer.ObserveTaskMutation(op)
	}
}

// TaskList is one owner's collection held in memory. Every mutation writes
// the full collection back before it becomes visible; a failed write leaves
// the list as it was.
type TaskList struct {
	svc      *TaskService
	owner    string
	tasks    []models.Task
	selected string
}

// SelectDate sets the calendar date new tasks are scheduled on.
func (l *TaskList) SelectDate(date string) error {
	d, err := models.ParseDate(strings.TrimSpace(date), l.svc.location)
	if err != nil {
		return ErrInvalidDate
	}
	l.selected = models.DateOf(d)
	return nil
}

// SelectedDate returns the scheduling date, today unless one was selected.
func (l *TaskList) SelectedDate() string {
	if l.selected == "" {
		return l.svc.Today()
	}
	return l.selected
}

// Add appends a new task for the selected date. A blank description
// leaves the list unchanged.
func (l *TaskList) Add(ctx context.Context, description string) (*models.Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrDescriptionRequired
	}
	if len(description) > constants.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	id, err := l.newID()
	if err != nil {
		return nil, err
	}

	task := models.Task{
		ID:          id,
		Description: description,
		Completed:   false,
		Date:        l.SelectedDate(),
		Priority:    false,
		CreatedAt:   l.svc.now().In(l.svc.location),
	}

	next := append(slices.Clone(l.tasks), task)
	if err := l.commit(ctx, OpAdd, next); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleCompleted flips the completed flag. It reports false, with no
// error, when no task has that id.
func (l *TaskList) ToggleCompleted(ctx context.Context, id string) (bool, error) {
	return l.toggle(ctx, OpToggleComplete, id, func(t *models.Task) {
		t.Completed = !t.Completed
	})
}

// TogglePriority flips the priority flag with the same contract as
// ToggleCompleted.
func (l *TaskList) TogglePriority(ctx context.Context, id string) (bool, error) {
	return l.toggle(ctx, OpTogglePriority, id, func(t *models.Task) {
		t.Priority = !t.Priority
	})
}

// Remove deletes the task with that id, reporting false when there was none.
func (l *TaskList) Remove(ctx context.Context, id string) (bool, error) {
	i := l.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(l.tasks), i, i+1)
	if err := l.commit(ctx, OpRemove, next); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns a copy of the task with that id.
func (l *TaskList) Get(id string) (models.Task, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return l.tasks[i], true
}

// All returns the collection in insertion order.
func (l *TaskList) All() []models.Task {
	return slices.Clone(l.tasks)
}

// Len returns the number of tasks.
func (l *TaskList) Len() int {
	return len(l.tasks)
}

// OnDate yields the tasks scheduled on date. The sequence can be ranged
// over any number of times and never changes the list.
func (l *TaskList) OnDate(date string) iter.Seq[models.Task] {
	return func(yield func(models.Task) bool) {
		for _, t := range l.tasks {
			if t.Date != date {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Today yields the tasks scheduled on the current calendar date.
func (l *TaskList) Today() iter.Seq[models.Task] {
	return func(yield func(models.Task) bool) {
		l.OnDate(l.svc.Today())(yield)
	}
}

// Progress summarizes Today.
func (l *TaskList) Progress() Progress {
	var p Progress
	for t := range l.Today() {
		p.Total++
		if t.Completed {
			p.Completed++
		}
	}
	return p
}

func (l *TaskList) toggle(ctx context.Context, op, id string, flip func(*models.Task)) (bool, error) {
	i := l.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := slices.Clone(l.tasks)
	flip(&next[i])
	if err := l.commit(ctx, op, next); err != nil {
		return false, err
	}
	return true, nil
}

func (l *TaskList) commit(ctx context.Context, op string, next []models.Task) error {
	if err := l.svc.repo.SaveAll(ctx, l.owner, next); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	l.tasks = next
	l.svc.observe(op)
	return nil
}

func (l *TaskList) indexOf(id string) int {
	return slices.IndexFunc(l.tasks, func(t models.Task) bool {
		return t.ID == id
	})
}

// newID mints a time-ordered id that no task in the list already uses.
func (l *TaskList) newID() (string, error) {
	for {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("failed to generate task id: %w", err)
		}
		if l.indexOf(id.String()) < 0 {
			return id.String(), nil
		}
	}
}
