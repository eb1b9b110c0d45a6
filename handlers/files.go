package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"musicren/config"
	"musicren/services"
)

// FileHandler handles file management endpoints
type FileHandler struct {
	fileService services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fs services.FileService) *FileHandler {
	return &FileHandler{
		fileService: fs,
	}
}

// ListFiles returns the audio files in the music directory along with their
// current tags
func (h *FileHandler) ListFiles(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		dir = config.GetMusicDir()
	}

	audioFiles, err := h.fileService.ListAudioFiles(dir)
	if err != nil {
		log.Printf("Error scanning audio files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to scan files",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": audioFiles,
		"count": len(audioFiles),
	})
}
