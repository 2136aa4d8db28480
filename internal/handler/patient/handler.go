package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrex/clinical-api/internal/handler"
	"github.com/medrex/clinical-api/internal/middleware"
	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/service/patient"
	"github.com/medrex/clinical-api/pkg/errors"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the patient routes on an already-guarded group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.PATCH("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	spec, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		c.Error(err)
		return
	}

	patients, err := h.service.List(c.Request.Context(), spec)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewListResponse(patients, len(patients)))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := handler.ParseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("invalid request body"))
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.Error(errors.Unauthorized("", nil))
		return
	}

	p, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := handler.ParseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("invalid request body"))
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := handler.ParseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
