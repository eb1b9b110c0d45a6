package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"musicren/config"
	"musicren/services"
	"musicren/types"
)

// RenameHandler handles synchronous rename and undo endpoints
type RenameHandler struct {
	renamer services.RenameEngine
}

// NewRenameHandler creates a new rename handler
func NewRenameHandler(renamer services.RenameEngine) *RenameHandler {
	return &RenameHandler{
		renamer: renamer,
	}
}

type renameRequest struct {
	Directory string `json:"directory"`
}

type undoRequest struct {
	Directory string          `json:"directory"`
	Changes   types.ChangeSet `json:"changes"`
}

// RenameFiles renames every eligible file in the directory and returns the
// change set needed to undo the pass
func (h *RenameHandler) RenameFiles(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.Directory == "" {
		req.Directory = config.GetMusicDir()
	}
	if info, err := os.Stat(req.Directory); err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "directory does not exist", "path": req.Directory})
		return
	}

	changes, err := h.renamer.RenameByTags(req.Directory)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "rename failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"renamed": len(changes),
		"changes": changes,
	})
}

// UndoRename restores original filenames from a previously returned change
// set
func (h *RenameHandler) UndoRename(c *gin.Context) {
	var req undoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.Directory == "" {
		req.Directory = config.GetMusicDir()
	}
	if len(req.Changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes to undo"})
		return
	}

	restored, err := h.renamer.Undo(req.Directory, req.Changes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "undo failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restored": restored,
	})
}
