package stub

import (
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prodchat/chatctl/internal/logging"
	"github.com/prodchat/chatctl/internal/shared/types"
)

const (
	// Caps mirror the real service's housekeeping: oldest sessions and
	// oldest transcript entries are evicted first.
	maxSessions        = 50
	maxSessionMessages = 20
)

// session is one in-memory chat session.
type session struct {
	id        string
	createdAt time.Time
	messages  []types.Message
}

// Server holds the stub service state and its router.
type Server struct {
	router *gin.Engine
	log    *logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
	order    []string // session ids, oldest first
}

// New creates a stub server. Pass a nil logger to discard logs.
func New(log *logging.Logger) *Server {
	if log == nil {
		log = logging.NewNop()
	}

	s := &Server{
		log:      log.Named("stub"),
		sessions: make(map[string]*session),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/create_session", s.createSession)
	router.POST("/chat", s.chat)
	router.GET("/history/:session_id", s.history)

	s.router = router
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// trimSessionsLocked evicts the oldest sessions beyond the cap.
func (s *Server) trimSessionsLocked() {
	for len(s.order) > maxSessions {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, oldest)
	}
}
