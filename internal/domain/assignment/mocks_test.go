package assignment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
)

// memStore is an in-memory Store with real transactional lock semantics:
// writes are staged until fn succeeds, per-worker locks block concurrent
// holders, and locks are released on both commit and rollback.
type memStore struct {
	mu          sync.Mutex
	shifts      map[uuid.UUID]*shift.Shift
	workers     map[uuid.UUID]*worker.Worker
	assignments map[uuid.UUID]*Assignment

	lockMu sync.Mutex
	locks  map[int64]chan struct{}

	lockWait time.Duration

	// createErr, when set, is returned by CreateAssignment.
	createErr error

	// beforeCommit, when set, runs after fn succeeds and before staged
	// writes become visible. Tests use it to hold two transactions at
	// the commit point simultaneously.
	beforeCommit func()
}

func newMemStore() *memStore {
	return &memStore{
		shifts:      make(map[uuid.UUID]*shift.Shift),
		workers:     make(map[uuid.UUID]*worker.Worker),
		assignments: make(map[uuid.UUID]*Assignment),
		locks:       make(map[int64]chan struct{}),
		lockWait:    500 * time.Millisecond,
	}
}

func (s *memStore) addShift(sh *shift.Shift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts[sh.ID] = sh
}

func (s *memStore) addWorker(w *worker.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[w.ID] = w
}

func (s *memStore) addAssignment(a *Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.assignments[a.ID] = &cp
}

func (s *memStore) getAssignment(id uuid.UUID) *Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (s *memStore) activeCount(shiftID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.assignments {
		if a.ShiftID == shiftID && a.Status == StatusAssigned {
			count++
		}
	}
	return count
}

func (s *memStore) lockChan(key int64) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// holdWorkerLock seizes the worker's lock from outside any transaction,
// simulating another admin mid-assignment.
func (s *memStore) holdWorkerLock(workerID uuid.UUID) {
	s.lockChan(LockKey(workerID)) <- struct{}{}
}

func (s *memStore) releaseWorkerLock(workerID uuid.UUID) {
	<-s.lockChan(LockKey(workerID))
}

func (s *memStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx := &memTx{store: s, held: make(map[int64]bool)}
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err
	}

	if s.beforeCommit != nil {
		s.beforeCommit()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range tx.staged {
		cp := *a
		s.assignments[a.ID] = &cp
	}
	return nil
}

type memTx struct {
	store  *memStore
	held   map[int64]bool
	staged []*Assignment
}

func (t *memTx) releaseLocks() {
	for key := range t.held {
		select {
		case <-t.store.lockChan(key):
		default:
		}
	}
}

func (t *memTx) GetShift(ctx context.Context, id uuid.UUID) (*shift.Shift, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	sh, ok := t.store.shifts[id]
	if !ok {
		return nil, ErrShiftNotFound
	}
	cp := *sh
	return &cp, nil
}

func (t *memTx) GetWorker(ctx context.Context, id uuid.UUID) (*worker.Worker, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	w, ok := t.store.workers[id]
	if !ok {
		return nil, ErrWorkerNotFound
	}
	cp := *w
	return &cp, nil
}

func (t *memTx) GetAssignment(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	a, ok := t.store.assignments[id]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (t *memTx) ListActiveAssignments(ctx context.Context, workerID uuid.UUID) ([]*Assignment, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var active []*Assignment
	for _, a := range t.store.assignments {
		if a.WorkerID != workerID || a.Status != StatusAssigned {
			continue
		}
		cp := *a
		if sh, ok := t.store.shifts[a.ShiftID]; ok {
			cp.Shift = *sh
		}
		active = append(active, &cp)
	}
	return active, nil
}

func (t *memTx) CountActiveAssignments(ctx context.Context, shiftID uuid.UUID) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	count := 0
	for _, a := range t.store.assignments {
		if a.ShiftID == shiftID && a.Status == StatusAssigned {
			count++
		}
	}
	return count, nil
}

func (t *memTx) CreateAssignment(ctx context.Context, a *Assignment) error {
	if t.store.createErr != nil {
		return t.store.createErr
	}
	cp := *a
	t.staged = append(t.staged, &cp)
	return nil
}

func (t *memTx) CancelAssignment(ctx context.Context, a *Assignment) error {
	t.store.mu.Lock()
	current, ok := t.store.assignments[a.ID]
	t.store.mu.Unlock()
	if !ok {
		return ErrAssignmentNotFound
	}
	if current.Status != StatusAssigned {
		return &InvalidStateError{Status: current.Status}
	}
	cp := *a
	t.staged = append(t.staged, &cp)
	return nil
}

func (t *memTx) LockWorker(ctx context.Context, workerID uuid.UUID) error {
	key := LockKey(workerID)
	if t.held[key] {
		return nil
	}

	ch := t.store.lockChan(key)
	timer := time.NewTimer(t.store.lockWait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		t.held[key] = true
		return nil
	case <-timer.C:
		return &LockTimeoutError{WorkerID: workerID}
	case <-ctx.Done():
		return ctx.Err()
	}
}
