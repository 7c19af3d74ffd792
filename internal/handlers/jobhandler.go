package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/board"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/dtos"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/services"
)

// JobHandler serves the job and board routes. LLMService may be nil when
// no model is configured.
type JobHandler struct {
	LLMService *services.LLMService
	JobService *services.JobService
}

func NewJobHandler(llm *services.LLMService, j *services.JobService) *JobHandler {
	return &JobHandler{
		LLMService: llm,
		JobService: j,
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	if h.LLMService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI extraction is not configured"})
		return
	}

	extractedJSON, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI Extraction failed: " + err.Error()})
		return
	}
	if !json.Valid([]byte(extractedJSON)) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Extraction returned invalid JSON"})
		return
	}

	// RawMessage keeps the model's JSON from being re-escaped as a string
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    json.RawMessage(extractedJSON),
	})
}

// CreateJob is the POST /jobs endpoint
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dtos.NewJobApplication(job))
}

// ListJobs is the GET /jobs endpoint
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.JobService.ListJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}
	out := make([]dtos.JobApplication, 0, len(jobs))
	for i := range jobs {
		out = append(out, dtos.NewJobApplication(&jobs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetJob is the GET /jobs/:id endpoint
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewJobApplication(job))
}

// UpdateStatus is the PATCH /jobs/:id/status endpoint. Only the four
// canonical statuses are accepted.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	status, valid := models.ParseStatus(req.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + req.Status})
		return
	}

	job, err := h.JobService.UpdateStatus(c.Request.Context(), id, status, models.EventStatusChange, "")
	if err != nil {
		respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewJobApplication(job))
}

// ListEvents is the GET /jobs/:id/events endpoint
func (h *JobHandler) ListEvents(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	events, err := h.JobService.ListEvents(c.Request.Context(), id)
	if err != nil {
		respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Board is the GET /board endpoint: jobs grouped into the four status
// columns, filtered by ?q= and ordered by ?sort=.
func (h *JobHandler) Board(c *gin.Context) {
	store := board.NewStore()
	board.NewLoader(services.NewBoardSource(h.JobService), store, nil).Refresh(c.Request.Context())

	search := c.Query("q")
	sortKey := board.ParseSortKey(c.Query("sort"))
	cols := store.ByStatus(search, sortKey)

	resp := dtos.BoardResponse{Search: search, Sort: string(sortKey)}
	for _, st := range models.Statuses() {
		resp.Columns = append(resp.Columns, dtos.BoardColumn{
			Status: st,
			Label:  st.Label(),
			Jobs:   cols[st],
		})
	}
	c.JSON(http.StatusOK, resp)
}

func jobID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id: " + c.Param("id")})
		return 0, false
	}
	return uint(id), true
}

func respondJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
