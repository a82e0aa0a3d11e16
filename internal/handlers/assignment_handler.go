package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/domain/assignment"
	"github.com/gravadigital/rosterly-api/internal/logger"
	"github.com/gravadigital/rosterly-api/internal/middleware"
	"github.com/gravadigital/rosterly-api/internal/response"
	"github.com/gravadigital/rosterly-api/internal/storage/postgres"
	"github.com/gravadigital/rosterly-api/internal/validation"
)

// Assigner is the slice of the assignment coordinator the handler needs
type Assigner interface {
	Assign(ctx context.Context, shiftID, workerID, assignedBy uuid.UUID) (*assignment.Assignment, error)
	CheckConflicts(ctx context.Context, shiftID, workerID uuid.UUID) ([]assignment.Conflict, error)
}

// Unassigner is the slice of the unassignment coordinator the handler needs
type Unassigner interface {
	Unassign(ctx context.Context, assignmentID, unassignedBy uuid.UUID) error
}

// AssignmentHandler exposes the assignment core over HTTP
type AssignmentHandler struct {
	assigner       Assigner
	unassigner     Unassigner
	assignmentRepo postgres.AssignmentRepository
	log            *log.Logger
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assigner Assigner, unassigner Unassigner, assignmentRepo postgres.AssignmentRepository) *AssignmentHandler {
	return &AssignmentHandler{
		assigner:       assigner,
		unassigner:     unassigner,
		assignmentRepo: assignmentRepo,
		log:            logger.Handler("assignment_handler"),
	}
}

// AssignRequest is the payload for creating an assignment
type AssignRequest struct {
	ShiftID  string `json:"shift_id" binding:"required"`
	WorkerID string `json:"worker_id" binding:"required"`
}

// Assign handles POST /api/assignments
func (h *AssignmentHandler) Assign(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.UnauthorizedError(c, "missing authenticated admin")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	if err := validation.ValidateUUID(req.ShiftID, "shift_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := validation.ValidateUUID(req.WorkerID, "worker_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	shiftID := uuid.MustParse(req.ShiftID)
	workerID := uuid.MustParse(req.WorkerID)

	created, err := h.assigner.Assign(c.Request.Context(), shiftID, workerID, actorID)
	if err != nil {
		h.respondAssignmentError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "worker assigned to shift", created)
}

// Unassign handles DELETE /api/assignments/:id
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.UnauthorizedError(c, "missing authenticated admin")
		return
	}

	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "assignment_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	if err := h.unassigner.Unassign(c.Request.Context(), uuid.MustParse(idParam), actorID); err != nil {
		h.respondAssignmentError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "assignment cancelled", nil)
}

// CheckConflicts handles GET /api/assignments/check. It is a read-only
// preview for the admin UI; the answer can be stale by the time the
// actual Assign lands.
func (h *AssignmentHandler) CheckConflicts(c *gin.Context) {
	shiftID := c.Query("shift_id")
	workerID := c.Query("worker_id")

	if err := validation.ValidateUUID(shiftID, "shift_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := validation.ValidateUUID(workerID, "worker_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	conflicts, err := h.assigner.CheckConflicts(c.Request.Context(), uuid.MustParse(shiftID), uuid.MustParse(workerID))
	if err != nil {
		h.respondAssignmentError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "conflicts evaluated", gin.H{
		"eligible":  len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

// GetByShift handles GET /api/shifts/:id/assignments
func (h *AssignmentHandler) GetByShift(c *gin.Context) {
	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "shift_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	assignments, err := h.assignmentRepo.GetByShiftID(idParam)
	if err != nil {
		h.log.Error("failed to list shift assignments", "shift_id", idParam, "error", err)
		response.InternalServerError(c, "failed to list assignments")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "assignments retrieved", assignments)
}

// UpdateStatusRequest is the payload for lifecycle status transitions
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/assignments/:id/status for the
// external lifecycle transitions (completed, no_show). Cancellation goes
// through Unassign.
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "assignment_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	status := assignment.Status(req.Status)
	if status != assignment.StatusCompleted && status != assignment.StatusNoShow {
		response.BadRequestError(c, "status must be completed or no_show")
		return
	}

	if err := h.assignmentRepo.UpdateStatus(uuid.MustParse(idParam), status); err != nil {
		h.log.Warn("lifecycle transition rejected", "assignment_id", idParam, "status", status, "error", err)
		response.ConflictErrorWithDetails(c, err.Error(), nil)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "assignment status updated", nil)
}

// respondAssignmentError maps the core error taxonomy onto HTTP statuses
func (h *AssignmentHandler) respondAssignmentError(c *gin.Context, err error) {
	var (
		validationErr  *assignment.ValidationError
		conflictErr    *assignment.ConflictError
		lockTimeoutErr *assignment.LockTimeoutError
		invalidState   *assignment.InvalidStateError
	)

	switch {
	case errors.As(err, &conflictErr):
		h.log.Info("assignment rejected with conflicts", "conflicts", len(conflictErr.Conflicts))
		response.ConflictErrorWithDetails(c, conflictErr.Error(), conflictErr.Conflicts)

	case errors.As(err, &lockTimeoutErr):
		h.log.Info("worker lock contention", "worker_id", lockTimeoutErr.WorkerID)
		response.LockedError(c, lockTimeoutErr.Error())

	case errors.As(err, &invalidState):
		response.ConflictErrorWithDetails(c, invalidState.Error(), nil)

	case errors.As(err, &validationErr):
		response.BadRequestError(c, validationErr.Error())

	case errors.Is(err, assignment.ErrShiftNotFound),
		errors.Is(err, assignment.ErrWorkerNotFound),
		errors.Is(err, assignment.ErrAssignmentNotFound):
		response.NotFoundError(c, err.Error())

	default:
		h.log.Error("assignment operation failed", "error", err)
		response.InternalServerError(c, "assignment operation failed")
	}
}
