package post

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skyeslattery/foundit/internal/asset"
	"github.com/skyeslattery/foundit/internal/logs"
	"github.com/skyeslattery/foundit/internal/match"
	"github.com/skyeslattery/foundit/internal/user"
)

// ImageUploader is the slice of the asset uploader post creation needs.
type ImageUploader interface {
	Create(ctx context.Context, dataURI string) (*asset.Asset, error)
}

// Matcher picks the best semantic match for a query among candidates.
type Matcher interface {
	BestMatch(ctx context.Context, query string, candidates []string) (int, float64, error)
}

type Handler struct {
	db       *gorm.DB
	uploader ImageUploader
	matcher  Matcher
}

func NewHandler(db *gorm.DB, uploader ImageUploader, matcher Matcher) *Handler {
	return &Handler{db: db, uploader: uploader, matcher: matcher}
}

// Create POST /api/users/:id/posts/
func (h *Handler) Create(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
		return
	}

	var owner user.User
	if err := h.db.First(&owner, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
		return
	}

	var input struct {
		Description string  `json:"description"`
		IsFound     *bool   `json:"is_found"`
		ImageData   *string `json:"image_data"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please add description"})
		return
	}
	// is_found must be explicit; a missing value is an error, not "lost".
	if input.IsFound == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please specify is_found"})
		return
	}

	// Upload before insert: a failed upload aborts the whole request and no
	// post row is written.
	var imageURL *string
	if input.ImageData != nil {
		uploaded, err := h.uploader.Create(c.Request.Context(), *input.ImageData)
		if err != nil {
			c.JSON(asset.ErrorStatus(err), gin.H{"error": err.Error()})
			logs.LogJSON("WARN", "Post image upload failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  c.FullPath(),
				"userID": userID,
			})
			return
		}
		url := uploaded.URL()
		imageURL = &url
	}

	newPost := Post{
		Description: input.Description,
		IsFound:     *input.IsFound,
		UserID:      owner.ID,
		Timestamp:   time.Now(),
		ImageURL:    imageURL,
	}
	if err := h.db.Create(&newPost).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create post"})
		logs.LogJSON("ERROR", "Post creation failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  c.FullPath(),
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, newPost)
}

// Found GET /api/posts/found/
func (h *Handler) Found(c *gin.Context) {
	h.listByStatus(c, true)
}

// Lost GET /api/posts/lost/
func (h *Handler) Lost(c *gin.Context) {
	h.listByStatus(c, false)
}

func (h *Handler) listByStatus(c *gin.Context, isFound bool) {
	posts := make([]Post, 0)
	if err := h.db.Where("is_found = ?", isFound).Order("id").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch posts"})
		logs.LogJSON("ERROR", "Post listing failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// Delete DELETE /api/posts/:id/
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found!"})
		return
	}

	var p Post
	if err := h.db.First(&p, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found!"})
		return
	}

	if err := h.db.Delete(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete post"})
		logs.LogJSON("ERROR", "Post deletion failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  c.FullPath(),
			"postID": id,
		})
		return
	}

	c.JSON(http.StatusOK, p)
}

// Search POST /api/posts/search/
// Lexical similarity against posts of the opposite status: a lost-item
// query is compared with found reports and vice versa.
func (h *Handler) Search(c *gin.Context) {
	input, ok := bindQuery(c)
	if !ok {
		return
	}

	candidates, ok := h.oppositeStatusPosts(c, *input.IsFound)
	if !ok {
		return
	}

	descriptions := make([]string, len(candidates))
	for i, p := range candidates {
		descriptions[i] = p.Description
	}

	matches := make([]Post, 0)
	for _, i := range match.FilterMatches(input.Description, descriptions, match.LexicalThreshold) {
		matches = append(matches, candidates[i])
	}
	c.JSON(http.StatusOK, matches)
}

// Match POST /api/posts/match/
// Semantic cross-search with the same status inversion as Search; returns
// at most the single best candidate.
func (h *Handler) Match(c *gin.Context) {
	input, ok := bindQuery(c)
	if !ok {
		return
	}

	candidates, ok := h.oppositeStatusPosts(c, *input.IsFound)
	if !ok {
		return
	}

	descriptions := make([]string, len(candidates))
	for i, p := range candidates {
		descriptions[i] = p.Description
	}

	best, _, err := h.matcher.BestMatch(c.Request.Context(), input.Description, descriptions)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Embedding service unavailable"})
		logs.LogJSON("ERROR", "Semantic match failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		return
	}
	if best < 0 {
		c.JSON(http.StatusOK, gin.H{"error": "No matching posts found"})
		return
	}

	c.JSON(http.StatusOK, []Post{candidates[best]})
}

type queryInput struct {
	Description string `json:"description"`
	IsFound     *bool  `json:"is_found"`
}

func bindQuery(c *gin.Context) (queryInput, bool) {
	var input queryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return input, false
	}
	if input.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please add description"})
		return input, false
	}
	if input.IsFound == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please specify is_found"})
		return input, false
	}
	return input, true
}

func (h *Handler) oppositeStatusPosts(c *gin.Context, isFound bool) ([]Post, bool) {
	var posts []Post
	if err := h.db.Where("is_found = ?", !isFound).Order("id").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch posts"})
		logs.LogJSON("ERROR", "Post query failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		return nil, false
	}
	return posts, true
}
