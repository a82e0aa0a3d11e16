package assignment

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/domain/worker"
)

// ConflictKind identifies which eligibility rule an assignment would violate
type ConflictKind string

const (
	ConflictTimeOverlap   ConflictKind = "time_overlap"
	ConflictCapacity      ConflictKind = "capacity"
	ConflictCertification ConflictKind = "certification"
)

// Conflict is a detected reason an assignment would violate an invariant
type Conflict struct {
	Kind    ConflictKind `json:"kind"`
	ShiftID uuid.UUID    `json:"shift_id,omitempty"`
	Message string       `json:"message"`
}

// Snapshot is the persisted state a rule evaluation runs against. The
// coordinators build it from reads issued inside the same transaction
// that holds the per-worker lock; CheckConflicts builds it from plain
// reads and accepts that the result may be stale.
type Snapshot struct {
	Shift  *shift.Shift
	Worker *worker.Worker

	// WorkerActive holds the worker's active assignments with their
	// shifts loaded.
	WorkerActive []*Assignment

	// ShiftActiveCount is the number of active assignments already on
	// the candidate shift.
	ShiftActiveCount int
}

// Rule evaluates one eligibility rule against a snapshot and returns any
// violations it finds.
type Rule func(snap Snapshot) []Conflict

// RuleEngine evaluates a pluggable list of rules. It has no side effects
// and takes no locks; callers are responsible for the consistency of the
// snapshot they hand it.
type RuleEngine struct {
	rules []Rule
}

// NewRuleEngine creates a rule engine with the given rules, or the
// default rule set when none are given.
func NewRuleEngine(rules ...Rule) *RuleEngine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &RuleEngine{rules: rules}
}

// DefaultRules returns the standard eligibility rules
func DefaultRules() []Rule {
	return []Rule{
		TimeOverlapRule,
		CapacityRule,
		CertificationRule,
	}
}

// Evaluate runs every rule and collects all violations. Rules are not
// short-circuited so callers can report every conflict at once. An empty
// result means the assignment is eligible.
func (e *RuleEngine) Evaluate(snap Snapshot) []Conflict {
	var conflicts []Conflict
	for _, rule := range e.rules {
		conflicts = append(conflicts, rule(snap)...)
	}
	return conflicts
}

// TimeOverlapRule flags each active assignment of the worker whose shift
// overlaps the candidate shift. Intervals are half-open, so back-to-back
// shifts that only touch at an endpoint do not conflict.
func TimeOverlapRule(snap Snapshot) []Conflict {
	var conflicts []Conflict
	for _, existing := range snap.WorkerActive {
		if !existing.IsActive() {
			continue
		}
		if existing.ShiftID == snap.Shift.ID {
			conflicts = append(conflicts, Conflict{
				Kind:    ConflictTimeOverlap,
				ShiftID: existing.ShiftID,
				Message: fmt.Sprintf("worker is already assigned to shift %s (%s)",
					existing.ShiftID, existing.Shift.TimeRange()),
			})
			continue
		}
		if snap.Shift.Overlaps(&existing.Shift) {
			conflicts = append(conflicts, Conflict{
				Kind:    ConflictTimeOverlap,
				ShiftID: existing.ShiftID,
				Message: fmt.Sprintf("worker has an overlapping assignment on shift %s (%s)",
					existing.ShiftID, existing.Shift.TimeRange()),
			})
		}
	}
	return conflicts
}

// CapacityRule flags the candidate shift when its active assignments
// already meet or exceed its capacity.
func CapacityRule(snap Snapshot) []Conflict {
	if snap.ShiftActiveCount >= snap.Shift.Capacity {
		return []Conflict{{
			Kind:    ConflictCapacity,
			ShiftID: snap.Shift.ID,
			Message: fmt.Sprintf("shift is at capacity (%d/%d)",
				snap.ShiftActiveCount, snap.Shift.Capacity),
		}}
	}
	return nil
}

// CertificationRule enforces the certification expiry gate: when the
// shift requires a certification, the worker must hold one that remains
// valid through the end of the shift. A missing certification and an
// expired one are reported identically.
func CertificationRule(snap Snapshot) []Conflict {
	if snap.Shift.RequiredCertID == nil {
		return nil
	}

	cert := snap.Worker.CertificationFor(*snap.Shift.RequiredCertID)
	if cert != nil && cert.ValidThrough(snap.Shift.EndTime) {
		return nil
	}

	return []Conflict{{
		Kind:    ConflictCertification,
		ShiftID: snap.Shift.ID,
		Message: fmt.Sprintf("worker does not hold certification %s valid through %s",
			snap.Shift.RequiredCertID, snap.Shift.EndTime.UTC().Format("2006-01-02 15:04")),
	}}
}
