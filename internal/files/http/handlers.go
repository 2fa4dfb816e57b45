package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jazbelrose/mylg-backend/internal/auth"
	"github.com/jazbelrose/mylg-backend/internal/files"
	projectdomain "github.com/jazbelrose/mylg-backend/internal/projects/domain"
	"github.com/jazbelrose/mylg-backend/internal/projects/repository"
)

const maxUploadBytes = 32 << 20

// Handler serves thumbnail and project-file uploads.
type Handler struct {
	storage  *files.Storage
	projects *repository.Repo
}

func New(storage *files.Storage, projects *repository.Repo) *Handler {
	return &Handler{storage: storage, projects: projects}
}

// Register attaches upload routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/thumbnail", h.uploadThumbnail)
	rg.POST("/projects/:project_id/uploads", h.uploadProjectFile)
}

func (h *Handler) uploadThumbnail(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "file too large"})
		return
	}

	name := filepath.Base(header.Filename)
	contentType := header.Header.Get("Content-Type")
	url, err := h.storage.UploadThumbnail(c.Request.Context(), auth.UserID(c), name, contentType, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "url": url})
}

func (h *Handler) uploadProjectFile(c *gin.Context) {
	projectID := c.Param("project_id")

	p, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !auth.IsAdmin(c) && !p.HasMember(auth.UserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "access denied"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "file too large"})
		return
	}

	name := filepath.Base(header.Filename)
	contentType := header.Header.Get("Content-Type")
	url, err := h.storage.UploadProjectFile(c.Request.Context(), projectID, name, contentType, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	up := projectdomain.Upload{FileName: name, URL: url, UploadedAt: time.Now()}
	if err := h.projects.AppendUpload(c.Request.Context(), projectID, up); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "upload": up})
}
