package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	repo "achieveTracker/internal/repository"
)

type completionKey struct {
	habitID uint
	date    dates.Date
}

// HabitStorage — хранилище привычек и отметок в памяти.
type HabitStorage struct {
	mtx         sync.RWMutex
	storage     map[uint]habit.Habit
	completions map[completionKey]habit.Completion
	nextID      uint
}

func NewHabitStorage() *HabitStorage {
	return &HabitStorage{
		storage:     make(map[uint]habit.Habit),
		completions: make(map[completionKey]habit.Completion),
		nextID:      1,
	}
}

func (s *HabitStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *HabitStorage) Create(ctx context.Context, h *habit.Habit) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	h.ID = s.nextID
	s.nextID++
	now := time.Now()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	s.storage[h.ID] = *h
	return nil
}

func (s *HabitStorage) Update(ctx context.Context, h *habit.Habit) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[h.ID]
	if !ok || existing.UserID != h.UserID {
		return repo.ErrNotFound
	}

	h.UpdatedAt = time.Now()
	s.storage[h.ID] = *h
	return nil
}

func (s *HabitStorage) GetByID(ctx context.Context, userID int64, id uint) (*habit.Habit, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	h, ok := s.storage[id]
	if !ok || h.UserID != userID {
		return nil, repo.ErrNotFound
	}
	copied := h
	return &copied, nil
}

func (s *HabitStorage) GetAll(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	return s.filter(userID, func(habit.Habit) bool { return true }), nil
}

func (s *HabitStorage) GetAllNonDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	return s.filter(userID, func(h habit.Habit) bool { return !h.Deleted }), nil
}

func (s *HabitStorage) GetAllDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	return s.filter(userID, func(h habit.Habit) bool { return h.Deleted }), nil
}

func (s *HabitStorage) Search(ctx context.Context, userID int64, query string) ([]*habit.Habit, error) {
	q := strings.ToLower(query)
	return s.filter(userID, func(h habit.Habit) bool {
		return !h.Deleted &&
			(strings.Contains(strings.ToLower(h.Name), q) ||
				strings.Contains(strings.ToLower(h.Description), q))
	}), nil
}

func (s *HabitStorage) ListUserIDs(ctx context.Context) ([]int64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	seen := make(map[int64]struct{})
	for _, h := range s.storage {
		seen[h.UserID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *HabitStorage) SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	h, ok := s.storage[id]
	if !ok || h.UserID != userID {
		return repo.ErrNotFound
	}
	h.RemoteID = remoteID
	h.UpdatedAt = time.Now()
	s.storage[id] = h
	return nil
}

func (s *HabitStorage) ReplaceActive(ctx context.Context, userID int64, snapshot []*habit.Habit) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tombstoned := make(map[int64]struct{})
	for id, h := range s.storage {
		if h.UserID != userID {
			continue
		}
		if h.Deleted {
			if h.RemoteID != 0 {
				tombstoned[h.RemoteID] = struct{}{}
			}
			continue
		}
		delete(s.storage, id)
		s.dropCompletions(id)
	}

	for _, h := range snapshot {
		if _, dead := tombstoned[h.RemoteID]; dead {
			continue
		}
		copied := *h
		copied.ID = s.nextID
		s.nextID++
		copied.UserID = userID
		s.storage[copied.ID] = copied
	}
	return nil
}

func (s *HabitStorage) MarkDeleted(ctx context.Context, userID int64, id uint) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	h, ok := s.storage[id]
	if !ok || h.UserID != userID {
		return repo.ErrNotFound
	}
	h.Deleted = true
	h.UpdatedAt = time.Now()
	s.storage[id] = h
	return nil
}

func (s *HabitStorage) PurgeDeleted(ctx context.Context, userID int64, ids []uint) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, id := range ids {
		h, ok := s.storage[id]
		if ok && h.UserID == userID && h.Deleted {
			delete(s.storage, id)
			s.dropCompletions(id)
		}
	}
	return nil
}

func (s *HabitStorage) UpdateStreaks(ctx context.Context, userID int64, id uint, current, longest int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	h, ok := s.storage[id]
	if !ok || h.UserID != userID {
		return repo.ErrNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now()
	s.storage[id] = h
	return nil
}

func (s *HabitStorage) SetCompletion(ctx context.Context, habitID uint, date dates.Date, done bool) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.completions[completionKey{habitID, date}] = habit.Completion{
		HabitID:     habitID,
		Date:        date,
		IsCompleted: done,
	}
	return nil
}

func (s *HabitStorage) IsCompletedOn(ctx context.Context, habitID uint, date dates.Date) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	c, ok := s.completions[completionKey{habitID, date}]
	return ok && c.IsCompleted, nil
}

func (s *HabitStorage) GetCompletionsInRange(ctx context.Context, habitID uint, from, to dates.Date) ([]habit.Completion, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []habit.Completion{}
	for key, c := range s.completions {
		if key.habitID != habitID {
			continue
		}
		if key.date.Before(from) || key.date.After(to) {
			continue
		}
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}

// вызывать только под mtx
func (s *HabitStorage) dropCompletions(habitID uint) {
	for key := range s.completions {
		if key.habitID == habitID {
			delete(s.completions, key)
		}
	}
}

func (s *HabitStorage) filter(userID int64, keep func(habit.Habit) bool) []*habit.Habit {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*habit.Habit{}
	for _, h := range s.storage {
		if h.UserID != userID || !keep(h) {
			continue
		}
		copied := h
		res = append(res, &copied)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
