package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/storage"
)

// taskEnvelope is the stored shape of a collection from version 2 on.
type taskEnvelope struct {
	Version int           `json:"version"`
	Tasks   []models.Task `json:"tasks"`
}

// legacyTask is the version 1 shape: a bare array whose ids are
// millisecond timestamps and whose dates are full timestamps.
type legacyTask struct {
	ID          json.RawMessage `json:"id"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Date        string          `json:"date"`
	Priority    bool            `json:"priority"`
}

// StoreTaskRepository keeps one collection per owner
type StoreTaskRepository struct {
	store    storage.Store
	location *time.Location
}

// NewTaskRepository creates a new TaskRepository. loc decides which calendar
// day a legacy timestamp falls on.
func NewTaskRepository(store storage.Store, loc *time.Location) TaskRepository {
	if loc == nil {
		loc = time.Local
	}
	return &StoreTaskRepository{store: store, location: loc}
}

// TaskKey returns the storage key of an owner's collection.
func TaskKey(owner string) string {
	return constants.StorageKeyTasksPrefix + owner
}

func (r *StoreTaskRepository) Load(ctx context.Context, owner string) ([]models.Task, error) {
	key := TaskKey(owner)
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.adoptLegacy(ctx, owner)
	}

	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		return r.migrateLegacy(key, raw)
	}

	var env taskEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	if env.Version != constants.TaskCollectionVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptRecord, key, env.Version)
	}

	return env.Tasks, nil
}

func (r *StoreTaskRepository) SaveAll(ctx context.Context, owner string, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return putJSON(ctx, r.store, TaskKey(owner), taskEnvelope{
		Version: constants.TaskCollectionVersion,
		Tasks:   tasks,
	})
}

// adoptLegacy hands the collection stored under the shared legacy key to
// the first owner that loads without a collection of its own. The adopted
// tasks are rewritten under the owner's key and the shared key is removed.
func (r *StoreTaskRepository) adoptLegacy(ctx context.Context, owner string) ([]models.Task, error) {
	raw, ok, err := r.store.Get(ctx, constants.StorageKeyLegacyTasks)
	if err != nil || !ok {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") {
		return nil, nil
	}

	tasks, err := r.migrateLegacy(constants.StorageKeyLegacyTasks, raw)
	if err != nil {
		return nil, err
	}

	if err := r.SaveAll(ctx, owner, tasks); err != nil {
		return nil, err
	}
	if err := r.store.Delete(ctx, constants.StorageKeyLegacyTasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *StoreTaskRepository) migrateLegacy(key, raw string) ([]models.Task, error) {
	var legacy []legacyTask
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}

	tasks := make([]models.Task, 0, len(legacy))
	for _, lt := range legacy {
		id := legacyID(lt.ID)
		date, err := r.legacyDate(lt.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: task %s: %v", ErrCorruptRecord, key, id, err)
		}

		task := models.Task{
			ID:          id,
			Description: lt.Description,
			Completed:   lt.Completed,
			Date:        date,
			Priority:    lt.Priority,
		}
		if ms, err := strconv.ParseInt(id, 10, 64); err == nil {
			task.CreatedAt = time.UnixMilli(ms).In(r.location)
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (r *StoreTaskRepository) legacyDate(value string) (string, error) {
	if d, err := models.ParseDate(value, r.location); err == nil {
		return models.DateOf(d), nil
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return "", err
	}
	return models.DateOf(ts.In(r.location)), nil
}

func legacyID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
