// Package ui is the headless user interface: a gin control API that posts
// intents to the app loop and serves the snapshot it publishes.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"letna/metaverse/internal/avatar"
	"letna/metaverse/internal/session"

	"github.com/gin-gonic/gin"
)

// Server is the control API. Its lifecycle.UI methods are called from the
// app loop; its handlers run on gin's goroutines.
type Server struct {
	engine  *gin.Engine
	intents chan<- Intent
	timeout time.Duration

	mu       sync.RWMutex
	form     Form
	snapshot Snapshot
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// NewServer returns a server that posts intents on intents and waits up to
// timeout for each reply.
func NewServer(intents chan<- Intent, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &Server{
		engine:  gin.New(),
		intents: intents,
		timeout: timeout,
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.RegisterHandlers()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterHandlers() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/state", s.handleState)
	s.engine.GET("/peers", s.handlePeers)
	s.engine.GET("/form", s.handleForm)
	s.engine.POST("/join", s.handleJoin)
	s.engine.POST("/leave", s.handleLeave)
	s.engine.POST("/chat", s.handleChat)
	s.engine.POST("/chat/open", s.handleChatOpen)
	s.engine.POST("/chat/close", s.handleChatClose)
	s.engine.PUT("/input", s.handleInput)
}

// Publish replaces the snapshot served to readers.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

// Snapshot returns the last published snapshot.
func (s *Server) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Form returns the current join form.
func (s *Server) Form() Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}

// SetFormValues stores the values a later join submission reads.
func (s *Server) SetFormValues(p session.JoinParams) {
	s.mu.Lock()
	s.form.Values = p
	s.mu.Unlock()
}

func (s *Server) JoinFormValues() session.JoinParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form.Values
}

func (s *Server) ShowJoinForm(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Visible = true
	if roomID != "" && s.form.Values.RoomID == "" {
		s.form.Values.RoomID = roomID
	}
}

func (s *Server) HideJoinForm() {
	s.mu.Lock()
	s.form.Visible = false
	s.form.Notice = ""
	s.mu.Unlock()
}

func (s *Server) SetJoinEnabled(enabled bool) {
	s.mu.Lock()
	s.form.Enabled = enabled
	s.mu.Unlock()
}

func (s *Server) ShowError(message string) {
	slog.Warn("showing error to user", "error", message)
	s.mu.Lock()
	s.form.Notice = message
	s.mu.Unlock()
}

func (s *Server) handleHealth(c *gin.Context) {
	SuccessResponse(c, gin.H{"status": "ok"})
}

func (s *Server) handleState(c *gin.Context) {
	SuccessResponse(c, s.Snapshot())
}

func (s *Server) handlePeers(c *gin.Context) {
	peers := s.Snapshot().Peers
	list := make([]any, len(peers))
	for i, p := range peers {
		list[i] = p
	}
	SuccessResponse(c, gin.H{"list": list})
}

func (s *Server) handleForm(c *gin.Context) {
	SuccessResponse(c, s.Form())
}

func (s *Server) handleJoin(c *gin.Context) {
	var req session.JoinParams
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	s.SetFormValues(req)

	s.dispatch(c, NewIntent(IntentJoin))
}

func (s *Server) handleLeave(c *gin.Context) {
	s.dispatch(c, NewIntent(IntentLeave))
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	intent := NewIntent(IntentChat)
	intent.Message = req.Message
	s.dispatch(c, intent)
}

func (s *Server) handleChatOpen(c *gin.Context) {
	s.dispatch(c, NewIntent(IntentChatOpen))
}

func (s *Server) handleChatClose(c *gin.Context) {
	s.dispatch(c, NewIntent(IntentChatClose))
}

func (s *Server) handleInput(c *gin.Context) {
	var keys avatar.Keys
	if err := c.ShouldBindJSON(&keys); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	intent := NewIntent(IntentInput)
	intent.Keys = keys
	s.dispatch(c, intent)
}

// dispatch posts intent to the app loop and writes its reply.
func (s *Server) dispatch(c *gin.Context, intent Intent) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	select {
	case s.intents <- intent:
	case <-ctx.Done():
		ErrorResponse(c, http.StatusServiceUnavailable, "client is busy")
		return
	}

	select {
	case err := <-intent.Reply:
		switch {
		case err == nil:
			AcceptedResponse(c, gin.H{"intent": intent.Kind})
		case errors.Is(err, ErrRejected):
			ErrorResponse(c, http.StatusConflict, err.Error())
		default:
			ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		}
	case <-ctx.Done():
		ErrorResponse(c, http.StatusServiceUnavailable, "client did not answer")
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.DebugContext(c.Request.Context(), "control request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
