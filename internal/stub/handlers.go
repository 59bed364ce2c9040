package stub

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prodchat/chatctl/internal/backend"
	"github.com/prodchat/chatctl/internal/shared/types"
)

func (s *Server) createSession(c *gin.Context) {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &session{id: id, createdAt: time.Now()}
	s.order = append(s.order, id)
	s.trimSessionsLocked()
	s.mu.Unlock()

	s.log.Info("session created", zap.String("session_id", id))
	c.JSON(http.StatusCreated, backend.CreateSessionResponse{SessionID: id})
}

func (s *Server) chat(c *gin.Context) {
	var req backend.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Message cannot be empty"})
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[req.SessionID]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}

	reply, productID := respond(message)

	sess.messages = append(sess.messages,
		types.Message{Role: types.RoleUser, Message: message},
		types.Message{Role: types.RoleAssistant, Message: reply},
	)
	if len(sess.messages) > maxSessionMessages {
		sess.messages = sess.messages[len(sess.messages)-maxSessionMessages:]
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, backend.ChatReply{
		SessionID:  req.SessionID,
		BotMessage: reply,
		ProductID:  productID,
	})
}

func (s *Server) history(c *gin.Context) {
	id := c.Param("session_id")

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}
	entries := make([]backend.HistoryEntry, 0, len(sess.messages))
	for _, m := range sess.messages {
		entries = append(entries, backend.HistoryEntry{Role: string(m.Role), Message: m.Message})
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, entries)
}
