package user

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skyeslattery/foundit/internal/logs"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// userPost is the shape of a post nested under its owner: same as the full
// post serialization minus the redundant user_id.
type userPost struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	IsFound     bool      `json:"is_found"`
	Timestamp   time.Time `json:"timestamp"`
	ImageURL    *string   `json:"image_url,omitempty"`
	UserID      uint      `json:"-"`
}

// List GET /api/users/
func (h *Handler) List(c *gin.Context) {
	var users []User
	if err := h.db.Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		logs.LogJSON("ERROR", "User listing failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		return
	}

	var rows []userPost
	if err := h.db.Table("posts").Order("id").Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		return
	}
	byUser := make(map[uint][]userPost)
	for _, p := range rows {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	serialized := make([]gin.H, 0, len(users))
	for _, u := range users {
		serialized = append(serialized, serialize(u, byUser[u.ID]))
	}
	c.JSON(http.StatusOK, gin.H{"users": serialized})
}

// Create POST /api/users/
// Creating a user is idempotent on netid: a second registration with the
// same netid returns the existing record.
func (h *Handler) Create(c *gin.Context) {
	var input struct {
		NetID string `json:"netid"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.NetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "NetID not found"})
		return
	}
	if input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name not found"})
		return
	}

	var existing User
	err := h.db.Where("netid = ?", input.NetID).First(&existing).Error
	if err == nil {
		posts, err := h.postsFor(existing.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch user"})
			return
		}
		c.JSON(http.StatusCreated, serialize(existing, posts))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create user"})
		logs.LogJSON("ERROR", "User lookup failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
			"netid": input.NetID,
		})
		return
	}

	newUser := User{Name: input.Name, NetID: input.NetID}
	if err := h.db.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create user"})
		logs.LogJSON("ERROR", "User creation failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
			"netid": input.NetID,
		})
		return
	}

	c.JSON(http.StatusCreated, serialize(newUser, nil))
}

// Get GET /api/users/:id/
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
		return
	}

	var u User
	if err := h.db.First(&u, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
		return
	}

	posts, err := h.postsFor(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch user"})
		return
	}
	c.JSON(http.StatusOK, serialize(u, posts))
}

// postsFor reads a user's posts through the posts table directly; the post
// package already imports this one, so the model can't be referenced here.
func (h *Handler) postsFor(userID uint) ([]userPost, error) {
	var rows []userPost
	err := h.db.Table("posts").Where("user_id = ?", userID).Order("id").Scan(&rows).Error
	return rows, err
}

func serialize(u User, posts []userPost) gin.H {
	if posts == nil {
		posts = []userPost{}
	}
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"netid": u.NetID,
		"posts": posts,
	}
}
