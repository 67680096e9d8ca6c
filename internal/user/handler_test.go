package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)
	return db, mock
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/users/", h.List)
	r.POST("/api/users/", h.Create)
	r.GET("/api/users/:id/", h.Get)
	return r
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func emptyPostRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "description", "is_found", "user_id", "timestamp", "image_url"})
}

func TestCreateUserNew(t *testing.T) {
	db, mock := setupTestDB(t)
	r := setupRouter(NewHandler(db))

	// netid lookup misses, then the insert runs.
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE netid`).
		WithArgs("abc123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "netid"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	w := performJSON(r, http.MethodPost, "/api/users/", gin.H{"netid": "abc123", "name": "Jo"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Jo", body["name"])
	assert.Equal(t, "abc123", body["netid"])
	assert.Equal(t, []interface{}{}, body["posts"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserIdempotent(t *testing.T) {
	db, mock := setupTestDB(t)
	r := setupRouter(NewHandler(db))

	// Same netid again: the existing record comes back, no insert.
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE netid`).
		WithArgs("abc123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "netid"}).AddRow(1, "Jo", "abc123"))
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE user_id`).
		WithArgs(1).
		WillReturnRows(emptyPostRows())

	w := performJSON(r, http.MethodPost, "/api/users/", gin.H{"netid": "abc123", "name": "Jo"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserMissingFields(t *testing.T) {
	db, _ := setupTestDB(t)
	r := setupRouter(NewHandler(db))

	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{"missing netid", gin.H{"name": "Jo"}, "NetID not found"},
		{"missing name", gin.H{"netid": "abc123"}, "Name not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(r, http.MethodPost, "/api/users/", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.message+`"}`, w.Body.String())
		})
	}
}

func TestGetUserNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	r := setupRouter(NewHandler(db))

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "netid"}))

	w := performJSON(r, http.MethodGet, "/api/users/42/", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found!"}`, w.Body.String())
}

func TestListUsersGroupsPosts(t *testing.T) {
	db, mock := setupTestDB(t)
	r := setupRouter(NewHandler(db))

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "netid"}).
			AddRow(1, "Jo", "abc123").
			AddRow(2, "Sam", "xyz789"))
	mock.ExpectQuery(`SELECT \* FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "description", "is_found", "user_id", "timestamp", "image_url"}).
			AddRow(1, "blue backpack", false, 1, time.Now(), nil))

	w := performJSON(r, http.MethodGet, "/api/users/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Users []struct {
			ID    uint `json:"id"`
			Posts []map[string]interface{}
		}
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Users, 2)
	assert.Len(t, body.Users[0].Posts, 1)
	assert.Empty(t, body.Users[1].Posts)
	// Nested posts don't repeat the owner's id.
	assert.NotContains(t, body.Users[0].Posts[0], "user_id")
}
