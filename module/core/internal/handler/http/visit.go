package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/database"
	"github.com/Reshigan/SalesSync-sub016/module/core/service"
)

type visitService interface {
	Initiate(ctx context.Context, params service.InitiateParams) (*domain.Visit, error)
	ValidateLocation(ctx context.Context, visitID string, reading *domain.LocationReading, customer domain.Coordinate, allowCached bool) (*domain.GeofenceResult, error)
	RecordConsent(ctx context.Context, visitID string) (*domain.Visit, error)
	StartActivity(ctx context.Context, visitID, activityID string) (*domain.Visit, error)
	CompleteActivity(ctx context.Context, visitID, activityID string, data *domain.ActivityData) (*domain.Visit, error)
	SkipActivity(ctx context.Context, visitID, activityID string) (*domain.Visit, error)
	CompleteVisit(ctx context.Context, visitID, notes string) (*domain.Visit, error)
	Cancel(ctx context.Context, visitID, reason string) (*domain.Visit, error)
	Get(visitID string) (*domain.Visit, error)
	Summary(visitID string) (domain.VisitSummary, error)
	AuditTrail(ctx context.Context, visitID string) ([]database.VisitSnapshot, error)
	LastKnownLocation(agentID string) (domain.LocationReading, bool)
}

type VisitHandler struct {
	visits visitService
}

func NewVisitHandler(visits visitService) *VisitHandler {
	return &VisitHandler{visits: visits}
}

func (h *VisitHandler) Register(r *gin.RouterGroup) {
	r.POST("/visits", h.CreateVisit)
	r.GET("/visits/:visit_id", h.GetVisit)
	r.GET("/visits/:visit_id/summary", h.GetSummary)
	r.GET("/visits/:visit_id/audit", h.GetAuditTrail)
	r.POST("/visits/:visit_id/location", h.ValidateLocation)
	r.POST("/visits/:visit_id/consent", h.RecordConsent)
	r.POST("/visits/:visit_id/activities/:activity_id/start", h.StartActivity)
	r.POST("/visits/:visit_id/activities/:activity_id/complete", h.CompleteActivity)
	r.POST("/visits/:visit_id/activities/:activity_id/skip", h.SkipActivity)
	r.POST("/visits/:visit_id/complete", h.CompleteVisit)
	r.POST("/visits/:visit_id/cancel", h.CancelVisit)
	r.GET("/agents/:agent_id/location", h.GetAgentLocation)
}

type readingPayload struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
	Timestamp      int64   `json:"timestamp"`
	Cached         bool    `json:"cached"`
}

func (p *readingPayload) toReading() domain.LocationReading {
	capturedAt := time.Now()
	if p.Timestamp > 0 {
		capturedAt = time.Unix(p.Timestamp, 0)
	}
	return domain.LocationReading{
		Coordinate:     domain.Coordinate{Lat: p.Latitude, Lon: p.Longitude},
		AccuracyMeters: p.AccuracyMeters,
		CapturedAt:     capturedAt,
		IsCached:       p.Cached,
	}
}

type createVisitRequest struct {
	AgentID            string                    `json:"agent_id" binding:"required"`
	CustomerID         string                    `json:"customer_id" binding:"required"`
	CustomerType       string                    `json:"customer_type"`
	VisitType          string                    `json:"visit_type" binding:"required"`
	Brands             []domain.Brand            `json:"brands"`
	AgentLocation      readingPayload            `json:"agent_location"`
	MandatoryTemplates []domain.ActivityTemplate `json:"mandatory_templates"`
}

func (h *VisitHandler) CreateVisit(c *gin.Context) {
	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerType := domain.CustomerType(req.CustomerType)
	if customerType == "" {
		customerType = domain.CustomerExisting
	}

	visit, err := h.visits.Initiate(c.Request.Context(), service.InitiateParams{
		AgentID:       req.AgentID,
		CustomerID:    req.CustomerID,
		CustomerType:  customerType,
		AgentLocation: req.AgentLocation.toReading(),
		Brands:        req.Brands,
		VisitType:     req.VisitType,
		Templates:     req.MandatoryTemplates,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, visit)
}

type validateLocationRequest struct {
	CustomerLatitude  float64         `json:"customer_latitude"`
	CustomerLongitude float64         `json:"customer_longitude"`
	AgentReading      *readingPayload `json:"agent_reading"`
	AllowCached       bool            `json:"allow_cached"`
}

func (h *VisitHandler) ValidateLocation(c *gin.Context) {
	var req validateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reading *domain.LocationReading
	if req.AgentReading != nil {
		r := req.AgentReading.toReading()
		reading = &r
	}

	result, err := h.visits.ValidateLocation(
		c.Request.Context(),
		c.Param("visit_id"),
		reading,
		domain.Coordinate{Lat: req.CustomerLatitude, Lon: req.CustomerLongitude},
		req.AllowCached,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *VisitHandler) RecordConsent(c *gin.Context) {
	visit, err := h.visits.RecordConsent(c.Request.Context(), c.Param("visit_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) StartActivity(c *gin.Context) {
	visit, err := h.visits.StartActivity(c.Request.Context(), c.Param("visit_id"), c.Param("activity_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) CompleteActivity(c *gin.Context) {
	var data domain.ActivityData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visit, err := h.visits.CompleteActivity(c.Request.Context(), c.Param("visit_id"), c.Param("activity_id"), &data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) SkipActivity(c *gin.Context) {
	visit, err := h.visits.SkipActivity(c.Request.Context(), c.Param("visit_id"), c.Param("activity_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

type completeVisitRequest struct {
	Notes string `json:"notes"`
}

func (h *VisitHandler) CompleteVisit(c *gin.Context) {
	var req completeVisitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	visit, err := h.visits.CompleteVisit(c.Request.Context(), c.Param("visit_id"), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

type cancelVisitRequest struct {
	Reason string `json:"reason"`
}

func (h *VisitHandler) CancelVisit(c *gin.Context) {
	var req cancelVisitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	visit, err := h.visits.Cancel(c.Request.Context(), c.Param("visit_id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) GetVisit(c *gin.Context) {
	visit, err := h.visits.Get(c.Param("visit_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) GetSummary(c *gin.Context) {
	summary, err := h.visits.Summary(c.Param("visit_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *VisitHandler) GetAuditTrail(c *gin.Context) {
	snapshots, err := h.visits.AuditTrail(c.Request.Context(), c.Param("visit_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch audit trail"})
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

func (h *VisitHandler) GetAgentLocation(c *gin.Context) {
	reading, ok := h.visits.LastKnownLocation(c.Param("agent_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached location for agent"})
		return
	}
	c.JSON(http.StatusOK, reading)
}

// writeError maps the error taxonomy to HTTP statuses: structural
// misuse is 404/409, recoverable validation is 422, bad coordinates
// are 400.
func writeError(c *gin.Context, err error) {
	var coordErr *domain.InvalidCoordinatesError
	var reqErr *domain.RequirementsUnmetError
	var dataErr *domain.InvalidActivityDataError

	switch {
	case errors.Is(err, domain.ErrVisitNotFound), errors.Is(err, domain.ErrActivityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLocationUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMandatoryActivitiesIncomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &reqErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": reqErr.Error(), "missing": reqErr.Missing})
	case errors.As(err, &dataErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": dataErr.Error(), "errors": dataErr.Errors})
	case errors.As(err, &coordErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": coordErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
