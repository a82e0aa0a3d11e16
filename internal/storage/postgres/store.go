package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/domain/assignment"
	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
	"github.com/gravadigital/rosterly-api/internal/logger"
)

// Store implements assignment.Store on top of GORM. On PostgreSQL the
// per-worker exclusive lock is a transaction-scoped advisory lock, so
// release on commit and rollback comes from the database itself. On
// other backends the lock comes from an in-process keyed mutex table
// released once the transaction has committed or rolled back.
type Store struct {
	db       *gorm.DB
	lockWait time.Duration
	locks    *lockTable
	log      *log.Logger
}

// NewStore creates a Store. lockWait bounds how long LockWorker blocks
// before failing with a LockTimeoutError.
func NewStore(db *gorm.DB, lockWait time.Duration) *Store {
	return &Store{
		db:       db,
		lockWait: lockWait,
		locks:    newLockTable(),
		log:      logger.Repository("assignment_store"),
	}
}

// InTx runs fn inside one database transaction. Any error from fn rolls
// the transaction back; in-process locks taken during fn are released on
// every exit path, including panics. The release sits outside the
// Transaction callback: it must not happen until COMMIT or ROLLBACK has
// completed, or a waiter could read pre-commit state.
func (s *Store) InTx(ctx context.Context, fn func(tx assignment.TxStore) error) error {
	ts := &txStore{
		store: s,
		held:  make(map[int64]bool),
	}
	defer ts.releaseInProcessLocks()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ts.db = tx
		return fn(ts)
	})
}

func (s *Store) usesAdvisoryLocks() bool {
	return s.db.Dialector.Name() == "postgres"
}

// txStore is the transactional view handed to the coordinators
type txStore struct {
	store *Store
	db    *gorm.DB

	// held tracks lock keys already acquired in this transaction so
	// re-acquisition is a no-op.
	held map[int64]bool

	// inProcess lists keys that must be released manually because they
	// came from the lock table rather than the database.
	inProcess []int64
}

func (t *txStore) GetShift(ctx context.Context, id uuid.UUID) (*shift.Shift, error) {
	var s shift.Shift
	if err := t.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, assignment.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to retrieve shift: %w", err)
	}
	return &s, nil
}

func (t *txStore) GetWorker(ctx context.Context, id uuid.UUID) (*worker.Worker, error) {
	var w worker.Worker
	if err := t.db.WithContext(ctx).Preload("Certifications").First(&w, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, assignment.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to retrieve worker: %w", err)
	}
	return &w, nil
}

func (t *txStore) GetAssignment(ctx context.Context, id uuid.UUID) (*assignment.Assignment, error) {
	var a assignment.Assignment
	if err := t.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, assignment.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to retrieve assignment: %w", err)
	}
	return &a, nil
}

func (t *txStore) ListActiveAssignments(ctx context.Context, workerID uuid.UUID) ([]*assignment.Assignment, error) {
	var assignments []*assignment.Assignment
	err := t.db.WithContext(ctx).
		Preload("Shift").
		Where("worker_id = ? AND status = ?", workerID, assignment.StatusAssigned).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active assignments: %w", err)
	}
	return assignments, nil
}

func (t *txStore) CountActiveAssignments(ctx context.Context, shiftID uuid.UUID) (int, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&assignment.Assignment{}).
		Where("shift_id = ? AND status = ?", shiftID, assignment.StatusAssigned).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active assignments: %w", err)
	}
	return int(count), nil
}

func (t *txStore) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	if err := t.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (t *txStore) CancelAssignment(ctx context.Context, a *assignment.Assignment) error {
	result := t.db.WithContext(ctx).
		Model(&assignment.Assignment{}).
		Where("id = ? AND status = ?", a.ID, assignment.StatusAssigned).
		Updates(map[string]any{
			"status":       a.Status,
			"cancelled_by": a.CancelledBy,
			"cancelled_at": a.CancelledAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &assignment.InvalidStateError{Status: a.Status}
	}
	return nil
}

func (t *txStore) LockWorker(ctx context.Context, workerID uuid.UUID) error {
	key := assignment.LockKey(workerID)
	if t.held[key] {
		return nil
	}

	if t.store.usesAdvisoryLocks() {
		if err := t.lockAdvisory(ctx, key); err != nil {
			if isLockTimeout(err) {
				t.store.log.Warn("worker lock wait timed out", "worker_id", workerID)
				return &assignment.LockTimeoutError{WorkerID: workerID}
			}
			return fmt.Errorf("failed to acquire worker lock: %w", err)
		}
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, t.store.lockWait)
		defer cancel()

		if err := t.store.locks.acquire(lockCtx, key); err != nil {
			t.store.log.Warn("worker lock wait timed out", "worker_id", workerID)
			return &assignment.LockTimeoutError{WorkerID: workerID}
		}
		t.inProcess = append(t.inProcess, key)
	}

	t.held[key] = true
	t.store.log.Debug("worker lock acquired", "worker_id", workerID, "key", key)
	return nil
}

// lockAdvisory takes a transaction-scoped advisory lock; PostgreSQL
// releases it automatically at commit or rollback. The wait is bounded
// by lock_timeout, scoped to this transaction via SET LOCAL and put back
// to the session default afterwards so later row locks in the same
// transaction are not bounded by it.
func (t *txStore) lockAdvisory(ctx context.Context, key int64) error {
	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.store.lockWait.Milliseconds())
	if err := t.db.WithContext(ctx).Exec(timeout).Error; err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if err := t.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
		return err
	}

	return t.db.WithContext(ctx).Exec("SET LOCAL lock_timeout = DEFAULT").Error
}

func (t *txStore) releaseInProcessLocks() {
	for _, key := range t.inProcess {
		t.store.locks.release(key)
	}
	t.inProcess = nil
}

// isLockTimeout recognizes PostgreSQL's lock_not_available error
// (SQLSTATE 55P03).
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}
