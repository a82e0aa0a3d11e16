package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/domain/worker"
	"github.com/gravadigital/rosterly-api/internal/logger"
	"github.com/gravadigital/rosterly-api/internal/response"
	"github.com/gravadigital/rosterly-api/internal/storage/postgres"
	"github.com/gravadigital/rosterly-api/internal/validation"
)

// WorkerHandler handles worker roster operations
type WorkerHandler struct {
	workerRepo postgres.WorkerRepository
	log        *log.Logger
}

// NewWorkerHandler creates a new worker handler
func NewWorkerHandler(workerRepo postgres.WorkerRepository) *WorkerHandler {
	return &WorkerHandler{
		workerRepo: workerRepo,
		log:        logger.Handler("worker_handler"),
	}
}

// CreateWorkerRequest is the payload for registering a worker
type CreateWorkerRequest struct {
	Name   string   `json:"name" binding:"required"`
	Email  string   `json:"email" binding:"required"`
	Skills []string `json:"skills"`
}

// Create handles POST /api/workers
func (h *WorkerHandler) Create(c *gin.Context) {
	var req CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	workerValidation := validation.WorkerValidation{}
	if err := workerValidation.ValidateName(req.Name); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := workerValidation.ValidateEmail(req.Email); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	w := worker.NewWorker(req.Name, req.Email, req.Skills)
	if err := h.workerRepo.Create(w); err != nil {
		h.log.Error("failed to create worker", "email", req.Email, "error", err)
		response.InternalServerError(c, "failed to create worker")
		return
	}

	h.log.Info("worker created", "worker_id", w.ID, "email", w.Email)
	response.SuccessResponse(c, http.StatusCreated, "worker created", w)
}

// Get handles GET /api/workers/:id
func (h *WorkerHandler) Get(c *gin.Context) {
	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "worker_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	w, err := h.workerRepo.GetByID(idParam)
	if err != nil {
		response.NotFoundError(c, "worker not found")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "worker retrieved", w)
}

// List handles GET /api/workers
func (h *WorkerHandler) List(c *gin.Context) {
	workers, err := h.workerRepo.GetAll()
	if err != nil {
		h.log.Error("failed to list workers", "error", err)
		response.InternalServerError(c, "failed to list workers")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "workers retrieved", workers)
}

// AddCertificationRequest is the payload for recording a certification
type AddCertificationRequest struct {
	CertID    string    `json:"cert_id" binding:"required"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

// AddCertification handles POST /api/workers/:id/certifications
func (h *WorkerHandler) AddCertification(c *gin.Context) {
	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "worker_id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var req AddCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	certID, err := uuid.Parse(req.CertID)
	if err != nil {
		response.BadRequestError(c, "cert_id must be a valid UUID")
		return
	}

	if _, err := h.workerRepo.GetByID(idParam); err != nil {
		response.NotFoundError(c, "worker not found")
		return
	}

	cert := &worker.Certification{
		ID:        uuid.New(),
		WorkerID:  uuid.MustParse(idParam),
		CertID:    certID,
		Name:      req.Name,
		ExpiresAt: req.ExpiresAt,
	}

	if err := h.workerRepo.AddCertification(cert); err != nil {
		h.log.Error("failed to add certification", "worker_id", idParam, "error", err)
		response.InternalServerError(c, "failed to add certification")
		return
	}

	h.log.Info("certification recorded", "worker_id", idParam, "cert_id", certID, "expires_at", req.ExpiresAt)
	response.SuccessResponse(c, http.StatusCreated, "certification recorded", cert)
}
