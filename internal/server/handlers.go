package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	msgEmpty    = "Veuillez écrire quelque chose."
	msgInvalid  = "Requête invalide."
	msgInternal = "Erreur interne du serveur."
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Message *string `json:"message"`
}

// AskResponse is the body of every /ask reply, errors included.
type AskResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleAsk(c *gin.Context) {
	logger := requestLogger(c, s.logger)

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, AskResponse{Response: msgInvalid})
		return
	}
	if req.Message == nil || strings.TrimSpace(*req.Message) == "" {
		c.JSON(http.StatusBadRequest, AskResponse{Response: msgEmpty})
		return
	}

	reply := s.router.Respond(c.Request.Context(), *req.Message)
	size := 0
	if s.memory != nil {
		size = s.memory.Len()
	}
	s.metrics.ObserveReply(string(reply.Stage), size)
	logger.Info("message answered", "stage", reply.Stage, "memory_entries", size)

	c.JSON(http.StatusOK, AskResponse{Response: reply.Text})
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
