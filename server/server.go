// Package server exposes retrieval, advisory chat and portfolio results over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gulf-property-analyzer/chat"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/retrieval"
	"gulf-property-analyzer/utils"
)

// Portfolio is the ranked analysis result the server reports on.
type Portfolio struct {
	Ranked  []models.InvestmentOpportunity
	Summary models.PortfolioSummary
}

// Options configures a Server.
type Options struct {
	TopK        int
	CORSOrigins []string
}

// Server wires HTTP routes onto the index, the advisor and a fixed portfolio.
type Server struct {
	index     *retrieval.Index
	advisor   *chat.Advisor
	sessions  *chat.SessionStore
	logger    *utils.Logger
	opts      Options
	portfolio Portfolio
}

// New creates a Server.
func New(index *retrieval.Index, advisor *chat.Advisor, sessions *chat.SessionStore,
	portfolio Portfolio, logger *utils.Logger, opts Options) *Server {
	if opts.TopK <= 0 {
		opts.TopK = retrieval.DefaultTopK
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		index:     index,
		advisor:   advisor,
		sessions:  sessions,
		logger:    logger,
		opts:      opts,
		portfolio: portfolio,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.logRequests)

	r.Get("/health", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.query)
		r.Post("/sessions", s.createSession)
		r.Get("/sessions/{id}", s.getSession)
		r.Post("/sessions/{id}/messages", s.postMessage)
		r.Get("/portfolio/summary", s.summary)
		r.Get("/opportunities/top", s.topOpportunities)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("[server] %s %s %d %v", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.index.Len(),
	})
}

type queryRequest struct {
	QueryText string            `json:"query_text"`
	Filters   retrieval.Filters `json:"filters"`
	TopK      int               `json:"top_k"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondQueryError(w, badBody(err))
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.opts.TopK
	}
	matches, err := s.index.Query(req.QueryText, req.Filters, topK)
	if err != nil {
		respondQueryError(w, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": matches})
}

type createSessionRequest struct {
	ClientID    string           `json:"client_id"`
	Preferences chat.Preferences `json:"preferences"`
}

// sessionView is the wire form of a session.
type sessionView struct {
	SessionID   string           `json:"session_id"`
	ClientID    string           `json:"client_id"`
	Preferences chat.Preferences `json:"preferences"`
	CreatedAt   time.Time        `json:"created_at"`
	History     []chat.Turn      `json:"history"`
}

func viewOf(sess *chat.Session) sessionView {
	return sessionView{
		SessionID:   sess.ID,
		ClientID:    sess.ClientID,
		Preferences: sess.Preferences,
		CreatedAt:   sess.CreatedAt,
		History:     sess.History(),
	}
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, badBody(err))
		return
	}
	if req.ClientID == "" {
		respondError(w, http.StatusBadRequest, "client_id is required")
		return
	}
	if b := req.Preferences.BudgetRange; b != nil {
		if err := (retrieval.Filters{BudgetRange: b}).Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sess, welcome := s.advisor.Start(req.ClientID, req.Preferences)
	respondJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"welcome":    welcome,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess))
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, badBody(err))
		return
	}

	reply, err := s.advisor.Chat(r.Context(), chi.URLParam(r, "id"), req.Message)
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, chat.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, "message is required")
		return
	case err != nil:
		s.logger.Error("[server] Chat failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

func (s *Server) summary(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.portfolio.Summary)
}

func (s *Server) topOpportunities(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}
	ranked := s.portfolio.Ranked
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]models.InvestmentOpportunity, n)
	copy(out, ranked[:n])
	respondJSON(w, http.StatusOK, map[string]any{"opportunities": out})
}

// respondQueryError keeps the results key so clients always see a result set.
func respondQueryError(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"results": []models.Match{},
		"error":   message,
	})
}

func badBody(err error) string {
	var fe *retrieval.FilterError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return "invalid request body"
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message})
}
