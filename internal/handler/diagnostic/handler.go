package diagnostic

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medrex/clinical-api/internal/handler"
	"github.com/medrex/clinical-api/internal/middleware"
	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/service/analysis"
	"github.com/medrex/clinical-api/internal/service/diagnostic"
	"github.com/medrex/clinical-api/pkg/blob"
	"github.com/medrex/clinical-api/pkg/errors"
)

type Handler struct {
	service  *diagnostic.Service
	analyzer analysis.Analyzer
}

func NewHandler(service *diagnostic.Service, analyzer analysis.Analyzer) *Handler {
	return &Handler{service: service, analyzer: analyzer}
}

// RegisterRoutes mounts the diagnostic routes on an already-guarded group.
// Diagnostics are append-only: there is no update or delete route.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	diagnostics := r.Group("/diagnostics")
	{
		diagnostics.GET("", h.ListDiagnostics)
		diagnostics.POST("", h.CreateDiagnostic)
		diagnostics.GET("/:id", h.GetDiagnostic)
		diagnostics.POST("/analyze", h.AnalyzeData)
	}
}

func (h *Handler) ListDiagnostics(c *gin.Context) {
	spec, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		c.Error(err)
		return
	}

	diagnostics, err := h.service.List(c.Request.Context(), spec)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewListResponse(diagnostics, len(diagnostics)))
}

func (h *Handler) GetDiagnostic(c *gin.Context) {
	id, err := handler.ParseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

// CreateDiagnostic accepts a multipart form with the record fields and an
// optional single `file` part. The file is validated and stored before the
// record is written.
func (h *Handler) CreateDiagnostic(c *gin.Context) {
	req, err := parseCreateForm(c)
	if err != nil {
		c.Error(err)
		return
	}

	doctorID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.Error(errors.Unauthorized("", nil))
		return
	}

	var meta *blob.Metadata
	var content io.Reader
	if fileHeader, ferr := c.FormFile("file"); ferr == nil {
		f, oerr := fileHeader.Open()
		if oerr != nil {
			c.Error(errors.Internal(oerr))
			return
		}
		defer f.Close()
		meta = &blob.Metadata{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
		}
		content = f
	}

	d, err := h.service.Create(c.Request.Context(), req, doctorID, meta, content)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(d))
}

type analyzeDataRequest struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// AnalyzeData forwards diagnostic data to the analyzer. No persistence side
// effects.
func (h *Handler) AnalyzeData(c *gin.Context) {
	var req analyzeDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("invalid request body"))
		return
	}

	findings, err := h.analyzer.AnalyzeDiagnostic(c.Request.Context(), req.Type, req.Data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(findings))
}

// parseCreateForm reads the multipart text fields. Observations arrive
// comma-separated; free-form data arrives as a JSON object string.
func parseCreateForm(c *gin.Context) (*model.CreateDiagnosticRequest, error) {
	req := &model.CreateDiagnosticRequest{
		PatientID:  c.PostForm("patient_id"),
		Type:       c.PostForm("type"),
		Conclusion: c.PostForm("conclusion"),
	}

	if raw := c.PostForm("risk_score"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Validation("invalid risk_score", errors.FieldError{Field: "risk_score", Reason: "must be a number"})
		}
		req.RiskScore = score
	}

	if raw := c.PostForm("observations"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				req.Obs = append(req.Obs, o)
			}
		}
	}

	if raw := c.PostForm("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Data); err != nil {
			return nil, errors.Validation("invalid data", errors.FieldError{Field: "data", Reason: "must be a JSON object"})
		}
	}

	return req, nil
}
