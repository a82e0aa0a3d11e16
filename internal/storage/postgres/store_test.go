package postgres

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/gravadigital/rosterly-api/internal/domain/assignment"
	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
	"github.com/gravadigital/rosterly-api/internal/storage/migrations"
)

func setupStoreTest(t *testing.T) (*gorm.DB, *Store) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "store_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrations.RunMigrations(db))

	return db, NewStore(db, 500*time.Millisecond)
}

func seedShiftAndWorker(t *testing.T, db *gorm.DB, capacity int) (*shift.Shift, *worker.Worker) {
	t.Helper()

	sh := shift.NewShift("Summer Gala", "server",
		time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 17, 0, 0, 0, time.UTC), capacity)
	sh.Status = shift.StatusPublished
	require.NoError(t, db.Create(sh).Error)

	w := worker.NewWorker("Dana Reyes", "dana@catering.test", []string{"server"})
	require.NoError(t, db.Create(w).Error)

	return sh, w
}

func TestStoreCommitsOnSuccess(t *testing.T) {
	db, store := setupStoreTest(t)
	sh, w := seedShiftAndWorker(t, db, 3)

	a := assignment.NewAssignment(sh.ID, w.ID, uuid.New())
	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		if err := tx.LockWorker(context.Background(), w.ID); err != nil {
			return err
		}
		return tx.CreateAssignment(context.Background(), a)
	})
	require.NoError(t, err)

	err = store.InTx(context.Background(), func(tx assignment.TxStore) error {
		got, err := tx.GetAssignment(context.Background(), a.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, assignment.StatusAssigned, got.Status)

		count, err := tx.CountActiveAssignments(context.Background(), sh.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, 1, count)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreRollsBackOnError(t *testing.T) {
	db, store := setupStoreTest(t)
	sh, w := seedShiftAndWorker(t, db, 3)

	boom := errors.New("boom")
	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		if err := tx.CreateAssignment(context.Background(), assignment.NewAssignment(sh.ID, w.ID, uuid.New())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&assignment.Assignment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStoreLockReleasedOnRollback(t *testing.T) {
	db, store := setupStoreTest(t)
	_, w := seedShiftAndWorker(t, db, 3)

	boom := errors.New("boom")
	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		if err := tx.LockWorker(context.Background(), w.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The rolled-back transaction must have freed the lock.
	err = store.InTx(context.Background(), func(tx assignment.TxStore) error {
		return tx.LockWorker(context.Background(), w.ID)
	})
	require.NoError(t, err)
}

func TestStoreLockWorkerIsReentrantWithinTx(t *testing.T) {
	db, store := setupStoreTest(t)
	_, w := seedShiftAndWorker(t, db, 3)

	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		if err := tx.LockWorker(context.Background(), w.ID); err != nil {
			return err
		}
		return tx.LockWorker(context.Background(), w.ID)
	})
	require.NoError(t, err)
}

func TestStoreLockWorkerTimesOutWhileHeld(t *testing.T) {
	db, _ := setupStoreTest(t)
	_, w := seedShiftAndWorker(t, db, 3)

	store := NewStore(db, 50*time.Millisecond)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.InTx(context.Background(), func(tx assignment.TxStore) error {
			if err := tx.LockWorker(context.Background(), w.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	<-locked
	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		return tx.LockWorker(context.Background(), w.ID)
	})

	var lockErr *assignment.LockTimeoutError
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, w.ID, lockErr.WorkerID)

	close(release)
	<-done
}

// A waiter that wins the worker lock must observe the previous holder's
// committed writes: the lock may only be released once the transaction
// has fully committed or rolled back.
func TestStoreHoldsLockUntilCommitCompletes(t *testing.T) {
	db, store := setupStoreTest(t)
	sh, w := seedShiftAndWorker(t, db, 3)

	entered := make(chan struct{})
	var (
		wg        sync.WaitGroup
		seenCount int
		waiterErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-entered
		waiterErr = store.InTx(context.Background(), func(tx assignment.TxStore) error {
			if err := tx.LockWorker(context.Background(), w.ID); err != nil {
				return err
			}
			count, err := tx.CountActiveAssignments(context.Background(), sh.ID)
			if err != nil {
				return err
			}
			seenCount = count
			return nil
		})
	}()

	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		if err := tx.LockWorker(context.Background(), w.ID); err != nil {
			return err
		}
		if err := tx.CreateAssignment(context.Background(), assignment.NewAssignment(sh.ID, w.ID, uuid.New())); err != nil {
			return err
		}
		close(entered)
		// Give the waiter time to block on the lock before this
		// transaction starts committing.
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	wg.Wait()
	require.NoError(t, waiterErr)
	assert.Equal(t, 1, seenCount)
}

// Two concurrent assigns for the same worker through the real store and
// coordinator: the per-worker lock serializes them, so exactly one wins.
func TestStoreSerializesConcurrentAssignsForSameWorker(t *testing.T) {
	db, store := setupStoreTest(t)
	sh, w := seedShiftAndWorker(t, db, 3)

	overlapping := shift.NewShift("Evening Service", "server",
		sh.StartTime.Add(time.Hour), sh.EndTime.Add(time.Hour), 3)
	overlapping.Status = shift.StatusPublished
	require.NoError(t, db.Create(overlapping).Error)

	coord := assignment.NewAssignmentCoordinator(store)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = coord.Assign(context.Background(), sh.ID, w.ID, uuid.New())
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = coord.Assign(context.Background(), overlapping.ID, w.ID, uuid.New())
	}()
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		var conflictErr *assignment.ConflictError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &conflictErr):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	var count int64
	require.NoError(t, db.Model(&assignment.Assignment{}).
		Where("status = ?", assignment.StatusAssigned).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestStoreCancelAssignmentGuardedUpdate(t *testing.T) {
	db, store := setupStoreTest(t)
	sh, w := seedShiftAndWorker(t, db, 3)

	a := assignment.NewAssignment(sh.ID, w.ID, uuid.New())
	require.NoError(t, store.InTx(context.Background(), func(tx assignment.TxStore) error {
		return tx.CreateAssignment(context.Background(), a)
	}))

	admin := uuid.New()
	require.NoError(t, store.InTx(context.Background(), func(tx assignment.TxStore) error {
		got, err := tx.GetAssignment(context.Background(), a.ID)
		if err != nil {
			return err
		}
		got.MarkCancelled(admin)
		return tx.CancelAssignment(context.Background(), got)
	}))

	var stored assignment.Assignment
	require.NoError(t, db.First(&stored, "id = ?", a.ID).Error)
	assert.Equal(t, assignment.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledBy)
	assert.Equal(t, admin, *stored.CancelledBy)

	// A second cancel finds no row in assigned status and must refuse.
	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		got, err := tx.GetAssignment(context.Background(), a.ID)
		if err != nil {
			return err
		}
		got.MarkCancelled(uuid.New())
		return tx.CancelAssignment(context.Background(), got)
	})

	var stateErr *assignment.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestStoreNotFoundSentinels(t *testing.T) {
	_, store := setupStoreTest(t)

	err := store.InTx(context.Background(), func(tx assignment.TxStore) error {
		_, err := tx.GetShift(context.Background(), uuid.New())
		return err
	})
	assert.ErrorIs(t, err, assignment.ErrShiftNotFound)

	err = store.InTx(context.Background(), func(tx assignment.TxStore) error {
		_, err := tx.GetWorker(context.Background(), uuid.New())
		return err
	})
	assert.ErrorIs(t, err, assignment.ErrWorkerNotFound)

	err = store.InTx(context.Background(), func(tx assignment.TxStore) error {
		_, err := tx.GetAssignment(context.Background(), uuid.New())
		return err
	})
	assert.ErrorIs(t, err, assignment.ErrAssignmentNotFound)
}

func TestIsLockTimeout(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"}

	assert.True(t, isLockTimeout(pgErr))
	assert.True(t, isLockTimeout(fmt.Errorf("acquiring advisory lock: %w", pgErr)))
	assert.False(t, isLockTimeout(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isLockTimeout(errors.New("lock timeout")))
	assert.False(t, isLockTimeout(nil))
}
