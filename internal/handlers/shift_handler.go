package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/domain/shift"
	"github.com/gravadigital/rosterly-api/internal/logger"
	"github.com/gravadigital/rosterly-api/internal/response"
	"github.com/gravadigital/rosterly-api/internal/storage/postgres"
	"github.com/gravadigital/rosterly-api/internal/validation"
)

// ShiftHandler handles shift catalog operations
type ShiftHandler struct {
	shiftRepo postgres.ShiftRepository
	log       *log.Logger
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(shiftRepo postgres.ShiftRepository) *ShiftHandler {
	return &ShiftHandler{
		shiftRepo: shiftRepo,
		log:       logger.Handler("shift_handler"),
	}
}

// CreateShiftRequest is the payload for creating a shift
type CreateShiftRequest struct {
	EventName      string    `json:"event_name" binding:"required"`
	RoleNeeded     string    `json:"role_needed" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	Capacity       int       `json:"capacity" binding:"required"`
	RequiredCertID *string   `json:"required_cert_id"`
}

// Create handles POST /api/shifts
func (h *ShiftHandler) Create(c *gin.Context) {
	var req CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	shiftValidation := validation.ShiftValidation{}
	if err := shiftValidation.ValidateRole(req.RoleNeeded); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := validation.ValidateTimeRange(req.StartTime, req.EndTime); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := validation.ValidateCapacity(req.Capacity); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	s := shift.NewShift(req.EventName, req.RoleNeeded, req.StartTime, req.EndTime, req.Capacity)

	if req.RequiredCertID != nil {
		certID, err := uuid.Parse(*req.RequiredCertID)
		if err != nil {
			response.BadRequestError(c, "required_cert_id must be a valid UUID")
			return
		}
		s.RequiredCertID = &certID
	}

	if err := s.Validate(); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	if err := h.shiftRepo.Create(s); err != nil {
		h.log.Error("failed to create shift", "event_name", req.EventName, "error", err)
		response.InternalServerError(c, "failed to create shift")
		return
	}

	h.log.Info("shift created", "shift_id", s.ID, "event_name", s.EventName, "role", s.RoleNeeded)
	response.SuccessResponse(c, http.StatusCreated, "shift created", s)
}

// Get handles GET /api/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "shift_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	s, err := h.shiftRepo.GetByID(idParam)
	if err != nil {
		response.NotFoundError(c, "shift not found")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "shift retrieved", s)
}

// List handles GET /api/shifts
func (h *ShiftHandler) List(c *gin.Context) {
	shifts, err := h.shiftRepo.GetAll()
	if err != nil {
		h.log.Error("failed to list shifts", "error", err)
		response.InternalServerError(c, "failed to list shifts")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "shifts retrieved", shifts)
}

// UpdateShiftStatusRequest is the payload for shift status transitions
type UpdateShiftStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/shifts/:id/status
func (h *ShiftHandler) UpdateStatus(c *gin.Context) {
	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "shift_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var req UpdateShiftStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	status := shift.Status(req.Status)
	if !status.IsValid() {
		response.BadRequestError(c, "invalid shift status: "+req.Status)
		return
	}

	if err := h.shiftRepo.UpdateStatus(idParam, status); err != nil {
		h.log.Error("failed to update shift status", "shift_id", idParam, "error", err)
		response.InternalServerError(c, "failed to update shift status")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "shift status updated", nil)
}
