package artworks

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/gin-gonic/gin"
)

func uploadMetaFromForm(c *gin.Context) artworks.UploadMeta {
	year, _ := strconv.Atoi(c.PostForm("year"))
	return artworks.UploadMeta{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Year:        year,
		Medium:      c.PostForm("medium"),
	}
}

// requireUploader resolves the actor and rejects roles that may not upload.
func requireUploader(c *gin.Context) (uint, bool) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return 0, false
	}
	if !actor.CanUpload() {
		common.RespondError(c, http.StatusForbidden, "Your role does not allow uploading artworks")
		return 0, false
	}
	return actor.ID, true
}

// Upload handles a single artwork upload.
func (h *Handler) Upload(c *gin.Context) {
	userID, ok := requireUploader(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	if len(files) == 0 {
		common.RespondError(c, http.StatusBadRequest, "At least one file is required under the 'file' or 'files' key")
		return
	}
	if len(files) > 1 {
		common.RespondError(c, http.StatusBadRequest, "Only one file is allowed for single upload")
		return
	}

	fileHeader := files[0]
	maxSize := int64(h.config.UploadMaxSizeMB) * 1024 * 1024
	if fileHeader.Size > maxSize {
		common.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds maximum allowed size (%d MB)", h.config.UploadMaxSizeMB))
		return
	}

	result, err := h.service.UploadSingle(c.Request.Context(), userID, fileHeader, uploadMetaFromForm(c), c.PostForm("storage"))
	if err != nil {
		if errors.Is(err, artworks.ErrUnsupportedFileType) {
			common.RespondError(c, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		if !c.IsAborted() {
			common.RespondError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	common.RespondSuccess(c, gin.H{
		"artwork":      h.toArtworkDTO(result.Artwork),
		"is_duplicate": result.IsDuplicate,
	})
}

// Uploads handles a batch artwork upload.
func (h *Handler) Uploads(c *gin.Context) {
	userID, ok := requireUploader(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		common.RespondError(c, http.StatusBadRequest, "At least one file is required under the 'files' key")
		return
	}
	if len(files) > 10 {
		common.RespondError(c, http.StatusBadRequest, "Maximum 10 files allowed per upload")
		return
	}

	var totalSize int64
	for _, f := range files {
		totalSize += f.Size
	}
	maxBatchTotalMB := h.config.UploadMaxBatchTotalMB
	maxTotalSize := int64(maxBatchTotalMB) * 1024 * 1024
	if totalSize > maxTotalSize {
		common.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Total size of all files (%.2f MB) exceeds maximum allowed (%d MB)",
				float64(totalSize)/1024/1024, maxBatchTotalMB))
		return
	}

	results, err := h.service.UploadBatch(c.Request.Context(), userID, files, uploadMetaFromForm(c), c.PostForm("storage"))
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to process uploads")
		return
	}

	var successResults []gin.H
	var errorResults []gin.H
	for _, result := range results {
		if result.Error != "" {
			errorResults = append(errorResults, gin.H{"filename": result.FileName, "error": result.Error})
		} else {
			successResults = append(successResults, gin.H{
				"artwork":      h.toArtworkDTO(result.Artwork),
				"is_duplicate": result.IsDuplicate,
			})
		}
	}

	common.RespondSuccess(c, gin.H{
		"message":     "Upload completed",
		"total_files": len(files),
		"succeeded":   successResults,
		"failed":      errorResults,
	})
}
