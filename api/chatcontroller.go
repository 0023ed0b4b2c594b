package api

import (
	"net/http"
	"time"

	"newsbrief/ragchat"

	"github.com/gin-gonic/gin"
)

// ChatController serves the highlight question-answering endpoint.
type ChatController struct {
	answerer *ragchat.Answerer
}

func NewChatController(answerer *ragchat.Answerer) *ChatController {
	return &ChatController{answerer: answerer}
}

// RegisterRoutes registers chat endpoints.
func (cc *ChatController) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/chat", cc.handleChat)
}

// ChatRequest carries the user's question.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// handleChat answers a question from the indexed highlights.
// POST /api/chat {"message": "..."}
func (cc *ChatController) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := cc.answerer.Query(c.Request.Context(), req.Message, 0)
	c.JSON(http.StatusOK, gin.H{
		"message":   req.Message,
		"response":  response,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
