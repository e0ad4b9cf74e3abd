package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pdp-recon/internal/findings"
	"pdp-recon/internal/model"
)

// Handler exposes the findings store over HTTP
type Handler struct {
	store   findings.Store
	version string
}

// NewHandler creates a new HTTP handler
func NewHandler(store findings.Store, version string) *Handler {
	return &Handler{store: store, version: version}
}

// NoteRequest is the body of POST /findings/:id/notes
type NoteRequest struct {
	Category string `json:"category" binding:"required"`
	Message  string `json:"message"`
}

// PricingRequest is the body of PUT /findings/:id/pricing
type PricingRequest struct {
	Correct *bool `json:"correct" binding:"required"`
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pdp-recon",
		"version": h.version,
	})
}

// ListFindings returns the findings snapshot
func (h *Handler) ListFindings(c *gin.Context) {
	all, err := h.store.ReadAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if all == nil {
		all = []model.Finding{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(all),
		"findings": all,
	})
}

// GetFinding returns one product's finding
func (h *Handler) GetFinding(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	f, err := findings.Get(c.Request.Context(), h.store, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "finding not found"})
		return
	}
	c.JSON(http.StatusOK, f)
}

// AppendNote records a message under a category
func (h *Handler) AppendNote(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.store.UpsertAppend(c.Request.Context(), id, category, req.Message); err != nil {
		writeError(c, err)
		return
	}
	h.respondFinding(c, id)
}

// SetPricing overwrites the pricing flag
func (h *Handler) SetPricing(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetPricingCorrect(c.Request.Context(), id, *req.Correct); err != nil {
		writeError(c, err)
		return
	}
	h.respondFinding(c, id)
}

func (h *Handler) respondFinding(c *gin.Context, id int) {
	f, err := findings.Get(c.Request.Context(), h.store, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// writeError maps store errors onto status codes
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrUnknownCategory), model.IsConfiguration(err):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrIO):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
