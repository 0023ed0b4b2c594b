package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"newsbrief/generation"
	"newsbrief/pipeline"

	"github.com/gin-gonic/gin"
)

// NewsController serves extraction runs and the stored article/highlight sets.
type NewsController struct {
	pipeline   *pipeline.Pipeline
	store      *pipeline.Store
	gate       *generation.Gate
	categories []string

	running atomic.Bool
}

func NewNewsController(p *pipeline.Pipeline, store *pipeline.Store, gate *generation.Gate, categories []string) *NewsController {
	return &NewsController{pipeline: p, store: store, gate: gate, categories: categories}
}

// RegisterRoutes registers news endpoints.
func (nc *NewsController) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/extract", nc.handleExtract)
	r.GET("/api/highlights", nc.handleHighlights)
	r.GET("/api/articles", nc.handleArticles)
	r.GET("/api/status", nc.handleStatus)
}

// ExtractRequest selects which categories a run covers; empty means all.
type ExtractRequest struct {
	Categories []string `json:"categories"`
}

// handleExtract starts a pipeline run in the background. Only one run may be
// in flight at a time.
func (nc *NewsController) handleExtract(c *gin.Context) {
	var req ExtractRequest
	// An empty body means all categories.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	categories := req.Categories
	if len(categories) == 0 {
		categories = nc.categories
	}

	if !nc.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "extraction already in progress"})
		return
	}

	go func() {
		defer nc.running.Store(false)
		result := nc.pipeline.Run(context.Background(), categories)
		log.Printf("Extraction run %s finished with status %s", result.RunID, result.Status)
	}()

	c.JSON(http.StatusOK, gin.H{
		"status":     "started",
		"message":    "News extraction started for categories: " + strings.Join(categories, ", "),
		"categories": categories,
	})
}

// handleHighlights returns stored highlights, optionally filtered by category.
// GET /api/highlights?category=sports&limit=20
func (nc *NewsController) handleHighlights(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	highlights := nc.store.Highlights(c.Query("category"), limit)
	c.JSON(http.StatusOK, gin.H{"highlights": highlights})
}

// handleArticles returns stored articles, optionally filtered by category.
// GET /api/articles?category=finance
func (nc *NewsController) handleArticles(c *gin.Context) {
	articles := nc.store.Articles(c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// handleStatus reports store counts and whether generation has degraded.
func (nc *NewsController) handleStatus(c *gin.Context) {
	articles, highlights := nc.store.Counts()
	c.JSON(http.StatusOK, gin.H{
		"status":               "operational",
		"articles_count":       articles,
		"highlights_count":     highlights,
		"articles_by_category": nc.store.ArticlesByCategory(),
		"categories":           nc.categories,
		"extraction_running":   nc.running.Load(),
		"generation_degraded":  nc.gate.Degraded(),
	})
}
