package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"sound-clash/internal/catalog"
	"sound-clash/internal/config"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	ws       *wsHub
	cfg      config.Config
	catalog  *catalog.Catalog
	limiter  *rateLimiter
	validate *validator.Validate
	timersMu sync.Mutex
	timers   map[string]*roomTimer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:    NewStore(),
		db:       conn,
		ws:       newWSHub(),
		cfg:      cfg,
		catalog:  catalog.New(conn),
		limiter:  newRateLimiter(),
		validate: validator.New(),
		timers:   make(map[string]*roomTimer),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/api/rooms", s.handleListRooms)
	r.Post("/api/rooms", s.handleCreateRoom)
	r.Route("/api/rooms/{code}", func(r chi.Router) {
		r.Get("/", s.handleGetRoom)
		r.Post("/join", s.handleJoinRoom)
		r.Post("/reconnect", s.handleReconnect)
		r.Post("/bots", s.handleAddBot)
		r.Post("/start", s.handleStartGame)
		r.Post("/prompt", s.handleSelectPrompt)
		r.Post("/submissions", s.handleSubmitSounds)
		r.Post("/judge", s.handleJudgeSubmission)
		r.Post("/likes", s.handleLikeSubmission)
		r.Post("/refresh-sounds", s.handleRefreshSounds)
		r.Post("/triple-sound", s.handleTripleSound)
		r.Post("/nuclear", s.handleNuclearOption)
		r.Post("/playback/next", s.handlePlaybackNext)
		r.Post("/playback/judging", s.handleJudgingPlayback)
		r.Post("/winner-audio-complete", s.handleWinnerAudioComplete)
		r.Post("/reconnect-vote", s.handleReconnectVote)
	})
	r.Get("/ws/rooms/{code}", s.handleWebsocket)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return r
}

// StartCleanup launches the background sweep that tears down idle and
// abandoned rooms.
func (s *Server) StartCleanup(interval time.Duration) {
	go s.cleanupLoop(interval)
}
