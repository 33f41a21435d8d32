// Package api serves stored article records over a read-only HTTP API.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/storage"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// Server represents the HTTP API server.
type Server struct {
	store storage.RecordStore
}

// NewServer creates a new API server over the given record store.
func NewServer(store storage.RecordStore) *Server {
	return &Server{
		store: store,
	}
}

// SetupRouter configures the Gin router with all article API routes
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	api := router.Group("/api/v1/articles")
	api.GET("", s.HandleListArticles)
	api.GET("/:id", s.HandleGetArticle)

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// ListArticlesResponse represents the response for GET /api/v1/articles.
type ListArticlesResponse struct {
	Articles []article.Record `json:"articles"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// HandleListArticles handles GET /api/v1/articles. Records keep their
// stored order.
func (s *Server) HandleListArticles(c *gin.Context) {
	records, err := s.store.Load()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to load articles: "+err.Error())
		return
	}

	// Filter by source (optional)
	if source := c.Query("source"); source != "" {
		parsed, err := article.ParseSource(source)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_parameter", "Invalid source parameter: "+source)
			return
		}
		records = filterBySource(records, parsed)
	}

	// Filter by author (optional)
	if author := c.Query("author"); author != "" {
		records = filterByAuthor(records, author)
	}

	total := len(records)

	limit := defaultLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsedLimit, err := strconv.Atoi(limitParam)
		if err != nil || parsedLimit < 1 {
			writeError(c, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = min(parsedLimit, maxLimit)
	}

	offset := 0
	if offsetParam := c.Query("offset"); offsetParam != "" {
		parsedOffset, err := strconv.Atoi(offsetParam)
		if err != nil || parsedOffset < 0 {
			writeError(c, http.StatusBadRequest, "invalid_parameter", "Invalid offset parameter")
			return
		}
		offset = parsedOffset
	}

	c.JSON(http.StatusOK, ListArticlesResponse{
		Articles: paginate(records, offset, limit),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// HandleGetArticle handles GET /api/v1/articles/:id.
func (s *Server) HandleGetArticle(c *gin.Context) {
	id := c.Param("id")

	records, err := s.store.Load()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to load articles: "+err.Error())
		return
	}

	for _, r := range records {
		if r.HasID() && r.ArticleID == id {
			c.JSON(http.StatusOK, r)
			return
		}
	}

	writeError(c, http.StatusNotFound, "not_found", "Article with ID "+id+" not found")
}

// filterBySource keeps records from the given source.
func filterBySource(records []article.Record, source article.Source) []article.Record {
	filtered := []article.Record{}
	for _, r := range records {
		if r.Source == source {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// filterByAuthor keeps records whose author contains author, ignoring case.
func filterByAuthor(records []article.Record, author string) []article.Record {
	needle := strings.ToLower(author)
	filtered := []article.Record{}
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Author), needle) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// paginate returns a slice of records for the given offset and limit.
func paginate(records []article.Record, offset, limit int) []article.Record {
	if offset >= len(records) {
		return []article.Record{}
	}

	end := min(offset+limit, len(records))

	return records[offset:end]
}
