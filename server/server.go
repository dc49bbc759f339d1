package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	statex "github.com/tanpawarit/banking-support-agent/agent/state"
	metricsx "github.com/tanpawarit/banking-support-agent/pkg/metrics"
)

// Config holds HTTP server settings. The generous write timeout covers
// slow model round trips on the chat endpoint.
type Config struct {
	Addr         string        `envconfig:"ADDR" split_words:"true" default:":3000"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"120s"`
}

// Server exposes the agent over HTTP.
type Server struct {
	agent    contractx.Agent
	sessions statex.Store
	metrics  *metricsx.Collector

	httpServer *http.Server
	now        func() time.Time
}

// New wires the router and returns a server ready to Start.
func New(cfg Config, agent contractx.Agent, sessions statex.Store, collector *metricsx.Collector) (*Server, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}

	s := &Server{
		agent:    agent,
		sessions: sessions,
		metrics:  collector,
		now:      time.Now,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/conversation/{threadId}", s.handleGetConversation).Methods(http.MethodGet)
	r.HandleFunc("/api/conversation/{threadId}", s.handleDeleteConversation).Methods(http.MethodDelete)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if collector != nil {
		r.Handle("/metrics", collector.Handler()).Methods(http.MethodGet)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until Shutdown or a listener failure.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type chatRequestBody struct {
	ThreadID   string `json:"threadId"`
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
}

type chatResponseBody struct {
	ThreadID   string    `json:"threadId"`
	CustomerID string    `json:"customerId"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	started := s.now()

	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.recordChat("bad_request", started)
		writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}
	if body.CustomerID == "" || body.Message == "" {
		s.recordChat("bad_request", started)
		writeError(w, http.StatusBadRequest, "Missing required fields: customerId and message are required", "")
		return
	}

	reply, err := s.agent.HandleMessage(r.Context(), contractx.ChatRequest{
		ThreadID:   body.ThreadID,
		CustomerID: body.CustomerID,
		Message:    body.Message,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			s.recordChat("bad_request", started)
			writeError(w, http.StatusBadRequest, "Missing required fields: customerId and message are required", "")
			return
		}
		log.Error().Err(err).Str("customer_id", body.CustomerID).Msg("chat turn failed")
		s.recordChat("error", started)
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	s.recordChat("ok", started)
	writeJSON(w, http.StatusOK, chatResponseBody{
		ThreadID:   reply.ThreadID,
		CustomerID: reply.CustomerID,
		Message:    reply.Message,
		Timestamp:  reply.Timestamp,
	})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["threadId"]

	session, err := s.sessions.Load(r.Context(), threadID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["threadId"]

	if err := s.sessions.Delete(r.Context(), threadID); err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Conversation deleted successfully",
		"threadId": threadID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	active, err := s.sessions.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"timestamp":           s.now().UTC().Format(time.RFC3339),
		"activeConversations": active,
	})
}

func (s *Server) recordChat(status string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordChat(status, s.now().Sub(started))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	body := map[string]string{"error": message}
	if detail != "" {
		body["message"] = detail
	}
	writeJSON(w, status, body)
}
