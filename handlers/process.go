package handlers

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"musicren/config"
	"musicren/services"
	"musicren/types"
	"musicren/websocket"
)

// ProcessHandler handles job management endpoints
type ProcessHandler struct {
	jobQueue services.JobQueue
	hub      websocket.Hub
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(jq services.JobQueue, hub websocket.Hub) *ProcessHandler {
	return &ProcessHandler{
		jobQueue: jq,
		hub:      hub,
	}
}

// processRequest is the JSON body accepted by the queueing endpoints
type processRequest struct {
	Directory   string `json:"directory"`
	Recognition bool   `json:"recognition"`
	Lyrics      bool   `json:"lyrics"`
}

// resolveDirectory fills in the configured music directory when the request
// omits one, and verifies the directory exists.
func resolveDirectory(c *gin.Context, req *processRequest) bool {
	if req.Directory == "" {
		req.Directory = config.GetMusicDir()
	}
	info, err := os.Stat(req.Directory)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "directory does not exist",
			"path":  req.Directory,
		})
		return false
	}
	return true
}

// QueueEnrich queues a full enrichment pass over a directory
func (h *ProcessHandler) QueueEnrich(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if !resolveDirectory(c, &req) {
		return
	}

	job := h.jobQueue.AddJob(types.JobTypeEnrich, req.Directory, req.Recognition, req.Lyrics)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Enrichment pass queued successfully",
		"job":     job,
	})
}

// QueueCovers queues a cover-only pass over a directory
func (h *ProcessHandler) QueueCovers(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if !resolveDirectory(c, &req) {
		return
	}

	job := h.jobQueue.AddJob(types.JobTypeCovers, req.Directory, false, false)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Cover pass queued successfully",
		"job":     job,
	})
}

// QueueRename queues a tag-based rename pass over a directory
func (h *ProcessHandler) QueueRename(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if !resolveDirectory(c, &req) {
		return
	}

	job := h.jobQueue.AddJob(types.JobTypeRename, req.Directory, false, false)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Rename pass queued successfully",
		"job":     job,
	})
}

// GetAllJobs returns all processing jobs
func (h *ProcessHandler) GetAllJobs(c *gin.Context) {
	jobs := h.jobQueue.GetAllJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob returns a specific processing job by ID
func (h *ProcessHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, exists := h.jobQueue.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// CancelJob cancels a processing job
func (h *ProcessHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("jobId")
	cancelled := h.jobQueue.CancelJob(jobID)
	if !cancelled {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job cannot be cancelled (not found or already processing)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "job cancelled successfully",
	})
}

// HandleWebSocketConnection handles WebSocket connections for specific job progress
func (h *ProcessHandler) HandleWebSocketConnection(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job ID is required"})
		return
	}

	// Check if job exists
	_, exists := h.jobQueue.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	if err := h.hub.Subscribe(c.Writer, c.Request, jobID); err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
	}
}

// HandleWebSocketAllConnection subscribes a client to progress from every job.
func (h *ProcessHandler) HandleWebSocketAllConnection(c *gin.Context) {
	if err := h.hub.Subscribe(c.Writer, c.Request, websocket.AllJobs); err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
	}
}
