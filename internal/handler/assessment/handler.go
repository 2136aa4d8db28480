package assessment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrex/clinical-api/internal/handler"
	"github.com/medrex/clinical-api/internal/middleware"
	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/service/analysis"
	"github.com/medrex/clinical-api/internal/service/assessment"
	"github.com/medrex/clinical-api/pkg/errors"
)

type Handler struct {
	service  *assessment.Service
	analyzer analysis.Analyzer
}

func NewHandler(service *assessment.Service, analyzer analysis.Analyzer) *Handler {
	return &Handler{service: service, analyzer: analyzer}
}

// RegisterRoutes mounts the assessment routes on an already-guarded group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	assessments := r.Group("/assessments")
	{
		assessments.GET("", h.ListAssessments)
		assessments.POST("", h.CreateAssessment)
		assessments.GET("/:id", h.GetAssessment)
		assessments.PATCH("/:id", h.UpdateAssessment)
		assessments.DELETE("/:id", h.DeleteAssessment)
		assessments.POST("/analyze-symptoms", h.AnalyzeSymptoms)
	}
}

func (h *Handler) ListAssessments(c *gin.Context) {
	spec, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		c.Error(err)
		return
	}

	assessments, err := h.service.List(c.Request.Context(), spec)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewListResponse(assessments, len(assessments)))
}

func (h *Handler) GetAssessment(c *gin.Context) {
	id, err := handler.ParseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(a))
}

func (h *Handler) CreateAssessment(c *gin.Context) {
	var req model.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("invalid request body"))
		return
	}

	doctorID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.Error(errors.Unauthorized("", nil))
		return
	}

	a, err := h.service.Create(c.Request.Context(), &req, doctorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(a))
}

func (h *Handler) UpdateAssessment(c *gin.Context) {
	id, err := handler.ParseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpdateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("invalid request body"))
		return
	}

	a, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(a))
}

func (h *Handler) DeleteAssessment(c *gin.Context) {
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

type analyzeSymptomsRequest struct {
	Symptoms []string `json:"symptoms"`
}

// AnalyzeSymptoms forwards the symptom list to the analyzer. No persistence
// side effects.
func (h *Handler) AnalyzeSymptoms(c *gin.Context) {
	var req analyzeSymptomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("invalid request body"))
		return
	}

	findings, err := h.analyzer.AnalyzeSymptoms(c.Request.Context(), req.Symptoms)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(findings))
}
