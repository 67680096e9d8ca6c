package asset

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyeslattery/foundit/internal/logs"
)

type Handler struct {
	uploader *Uploader
}

func NewHandler(uploader *Uploader) *Handler {
	return &Handler{uploader: uploader}
}

// Upload POST /api/upload/
func (h *Handler) Upload(c *gin.Context) {
	var input struct {
		ImageData *string `json:"image_data"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ImageData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No base64 image found"})
		return
	}

	record, err := h.uploader.Create(c.Request.Context(), *input.ImageData)
	if err != nil {
		status := ErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		logs.LogJSON("WARN", "Image upload failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		return
	}

	c.JSON(http.StatusCreated, Serialize(record))
}

// Serialize is the asset's public JSON shape.
func Serialize(a *Asset) gin.H {
	return gin.H{
		"id":         a.ID,
		"url":        a.URL(),
		"extension":  a.Extension,
		"width":      a.Width,
		"height":     a.Height,
		"created_at": a.CreatedAt,
	}
}

// ErrorStatus maps uploader failures onto the error taxonomy: bad
// input is the caller's fault, storage trouble is the backend's.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
