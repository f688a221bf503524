package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"achieveTracker/internal/models/task"
	repo "achieveTracker/internal/repository"
)

// TaskStorage — потокобезопасное хранилище задач в памяти.
// Используется в тестах и в режиме repository.type = "inmemory".
type TaskStorage struct {
	mtx     sync.RWMutex
	storage map[uint]task.Task
	nextID  uint
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uint]task.Task),
		nextID:  1,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t.ID = s.nextID
	s.nextID++
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	s.storage[t.ID] = *t
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[t.ID]
	if !ok || existing.UserID != t.UserID {
		return repo.ErrNotFound
	}

	t.UpdatedAt = time.Now()
	s.storage[t.ID] = *t
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, userID int64, id uint) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.storage[id]
	if !ok || t.UserID != userID {
		return nil, repo.ErrNotFound
	}
	copied := t
	return &copied, nil
}

func (s *TaskStorage) GetAll(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.filter(userID, func(task.Task) bool { return true }), nil
}

func (s *TaskStorage) GetAllNonDeleted(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.filter(userID, func(t task.Task) bool { return !t.Deleted }), nil
}

func (s *TaskStorage) GetAllDeleted(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.filter(userID, func(t task.Task) bool { return t.Deleted }), nil
}

func (s *TaskStorage) Search(ctx context.Context, userID int64, query string) ([]*task.Task, error) {
	q := strings.ToLower(query)
	return s.filter(userID, func(t task.Task) bool {
		return !t.Deleted &&
			(strings.Contains(strings.ToLower(t.Title), q) ||
				strings.Contains(strings.ToLower(t.Description), q))
	}), nil
}

func (s *TaskStorage) ListUserIDs(ctx context.Context) ([]int64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	seen := make(map[int64]struct{})
	for _, t := range s.storage {
		seen[t.UserID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *TaskStorage) SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.storage[id]
	if !ok || t.UserID != userID {
		return repo.ErrNotFound
	}
	t.RemoteID = remoteID
	t.UpdatedAt = time.Now()
	s.storage[id] = t
	return nil
}

func (s *TaskStorage) ReplaceActive(ctx context.Context, userID int64, snapshot []*task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// Томбстоуны переживают замену: снятая с них строка снимка не вставляется,
	// чтобы pull не воскрешал удалённое.
	tombstoned := make(map[int64]struct{})
	for id, t := range s.storage {
		if t.UserID != userID {
			continue
		}
		if t.Deleted {
			if t.RemoteID != 0 {
				tombstoned[t.RemoteID] = struct{}{}
			}
			continue
		}
		delete(s.storage, id)
	}

	for _, t := range snapshot {
		if _, dead := tombstoned[t.RemoteID]; dead {
			continue
		}
		copied := *t
		copied.ID = s.nextID
		s.nextID++
		copied.UserID = userID
		s.storage[copied.ID] = copied
	}
	return nil
}

func (s *TaskStorage) MarkDeleted(ctx context.Context, userID int64, id uint) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.storage[id]
	if !ok || t.UserID != userID {
		return repo.ErrNotFound
	}
	t.Deleted = true
	t.UpdatedAt = time.Now()
	s.storage[id] = t
	return nil
}

func (s *TaskStorage) PurgeDeleted(ctx context.Context, userID int64, ids []uint) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, id := range ids {
		t, ok := s.storage[id]
		if ok && t.UserID == userID && t.Deleted {
			delete(s.storage, id)
		}
	}
	return nil
}

func (s *TaskStorage) filter(userID int64, keep func(task.Task) bool) []*task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, t := range s.storage {
		if t.UserID != userID || !keep(t) {
			continue
		}
		copied := t
		res = append(res, &copied)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
