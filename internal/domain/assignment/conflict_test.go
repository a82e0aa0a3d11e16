package assignment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
)

func day(hour, min int) time.Time {
	return time.Date(2024, 6, 15, hour, min, 0, 0, time.UTC)
}

func testShift(start, end time.Time, capacity int) *shift.Shift {
	s := shift.NewShift("Summer Gala", "server", start, end, capacity)
	s.Status = shift.StatusPublished
	return s
}

func testWorker() *worker.Worker {
	return worker.NewWorker("Dana Reyes", "dana@catering.test", []string{"server"})
}

func activeOn(w *worker.Worker, sh *shift.Shift) *Assignment {
	a := NewAssignment(sh.ID, w.ID, uuid.New())
	a.Shift = *sh
	return a
}

func TestTimeOverlapRule(t *testing.T) {
	w := testWorker()
	candidate := testShift(day(12, 0), day(17, 0), 5)

	tests := []struct {
		name          string
		existingStart time.Time
		existingEnd   time.Time
		wantConflict  bool
	}{
		{"fully inside candidate", day(13, 0), day(15, 0), true},
		{"spans candidate", day(11, 0), day(18, 0), true},
		{"overlaps start", day(10, 0), day(13, 0), true},
		{"overlaps end", day(16, 0), day(19, 0), true},
		{"ends exactly when candidate starts", day(9, 0), day(12, 0), false},
		{"starts exactly when candidate ends", day(17, 0), day(20, 0), false},
		{"entirely before", day(8, 0), day(10, 0), false},
		{"entirely after", day(18, 0), day(20, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := testShift(tt.existingStart, tt.existingEnd, 5)
			snap := Snapshot{
				Shift:        candidate,
				Worker:       w,
				WorkerActive: []*Assignment{activeOn(w, existing)},
			}

			conflicts := TimeOverlapRule(snap)
			if tt.wantConflict {
				require.Len(t, conflicts, 1)
				assert.Equal(t, ConflictTimeOverlap, conflicts[0].Kind)
				assert.Equal(t, existing.ID, conflicts[0].ShiftID)
			} else {
				assert.Empty(t, conflicts)
			}
		})
	}
}

func TestTimeOverlapRuleFlagsEveryOverlappingAssignment(t *testing.T) {
	w := testWorker()
	candidate := testShift(day(10, 0), day(18, 0), 5)

	first := testShift(day(9, 0), day(11, 0), 5)
	second := testShift(day(16, 0), day(19, 0), 5)
	clear := testShift(day(19, 0), day(21, 0), 5)

	snap := Snapshot{
		Shift:  candidate,
		Worker: w,
		WorkerActive: []*Assignment{
			activeOn(w, first),
			activeOn(w, second),
			activeOn(w, clear),
		},
	}

	conflicts := TimeOverlapRule(snap)
	require.Len(t, conflicts, 2)
}

func TestTimeOverlapRuleFlagsRepeatAssignmentToSameShift(t *testing.T) {
	w := testWorker()
	candidate := testShift(day(12, 0), day(17, 0), 5)

	snap := Snapshot{
		Shift:        candidate,
		Worker:       w,
		WorkerActive: []*Assignment{activeOn(w, candidate)},
	}

	conflicts := TimeOverlapRule(snap)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictTimeOverlap, conflicts[0].Kind)
	assert.Contains(t, conflicts[0].Message, "already assigned")
}

func TestCapacityRule(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		activeCount  int
		wantConflict bool
	}{
		{"empty shift", 3, 0, false},
		{"one slot left", 3, 2, false},
		{"exactly full", 3, 3, true},
		{"over full", 3, 4, true},
		{"single slot taken", 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{
				Shift:            testShift(day(12, 0), day(17, 0), tt.capacity),
				Worker:           testWorker(),
				ShiftActiveCount: tt.activeCount,
			}

			conflicts := CapacityRule(snap)
			if tt.wantConflict {
				require.Len(t, conflicts, 1)
				assert.Equal(t, ConflictCapacity, conflicts[0].Kind)
			} else {
				assert.Empty(t, conflicts)
			}
		})
	}
}

func TestCertificationRule(t *testing.T) {
	certID := uuid.New()
	shiftEnd := time.Date(2024, 1, 2, 22, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		expiresAt    *time.Time
		wantConflict bool
	}{
		{"no certification held", nil, true},
		{"expires before shift ends", timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), true},
		{"expires exactly at shift end", timePtr(shiftEnd), false},
		{"expires after shift ends", timePtr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := testShift(time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC), shiftEnd, 5)
			sh.RequiredCertID = &certID

			w := testWorker()
			if tt.expiresAt != nil {
				w.Certifications = []worker.Certification{{
					ID:        uuid.New(),
					WorkerID:  w.ID,
					CertID:    certID,
					Name:      "Food Handler",
					ExpiresAt: *tt.expiresAt,
				}}
			}

			conflicts := CertificationRule(Snapshot{Shift: sh, Worker: w})
			if tt.wantConflict {
				require.Len(t, conflicts, 1)
				assert.Equal(t, ConflictCertification, conflicts[0].Kind)
			} else {
				assert.Empty(t, conflicts)
			}
		})
	}
}

func TestCertificationRuleIgnoresShiftsWithoutRequirement(t *testing.T) {
	snap := Snapshot{
		Shift:  testShift(day(12, 0), day(17, 0), 5),
		Worker: testWorker(),
	}
	assert.Empty(t, CertificationRule(snap))
}

func TestCertificationRuleUsesLatestExpiryForKind(t *testing.T) {
	certID := uuid.New()
	sh := testShift(day(12, 0), day(17, 0), 5)
	sh.RequiredCertID = &certID

	w := testWorker()
	w.Certifications = []worker.Certification{
		{ID: uuid.New(), WorkerID: w.ID, CertID: certID, ExpiresAt: day(13, 0)},
		{ID: uuid.New(), WorkerID: w.ID, CertID: certID, ExpiresAt: day(23, 0)},
	}

	assert.Empty(t, CertificationRule(Snapshot{Shift: sh, Worker: w}))
}

func TestEvaluateCollectsEveryViolation(t *testing.T) {
	certID := uuid.New()
	w := testWorker()

	candidate := testShift(day(12, 0), day(17, 0), 1)
	candidate.RequiredCertID = &certID

	overlapping := testShift(day(13, 0), day(15, 0), 5)

	snap := Snapshot{
		Shift:            candidate,
		Worker:           w,
		WorkerActive:     []*Assignment{activeOn(w, overlapping)},
		ShiftActiveCount: 1,
	}

	conflicts := NewRuleEngine().Evaluate(snap)
	require.Len(t, conflicts, 3)

	kinds := make(map[ConflictKind]bool)
	for _, c := range conflicts {
		kinds[c.Kind] = true
	}
	assert.True(t, kinds[ConflictTimeOverlap])
	assert.True(t, kinds[ConflictCapacity])
	assert.True(t, kinds[ConflictCertification])
}

func TestEvaluateWithNoViolations(t *testing.T) {
	snap := Snapshot{
		Shift:  testShift(day(12, 0), day(17, 0), 3),
		Worker: testWorker(),
	}
	assert.Empty(t, NewRuleEngine().Evaluate(snap))
}

func TestNewRuleEngineWithCustomRules(t *testing.T) {
	called := false
	engine := NewRuleEngine(func(snap Snapshot) []Conflict {
		called = true
		return nil
	})

	engine.Evaluate(Snapshot{Shift: testShift(day(12, 0), day(17, 0), 1), Worker: testWorker()})
	assert.True(t, called)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
