package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/janus-door/janus/internal/janus/service"
	"github.com/janus-door/janus/internal/janus/types"
)

// maxRequestBody caps request body size.  The largest payload is an event
// batch; recognition batches are small, so 64 KiB is generous.
const maxRequestBody = 64 * 1024

type Dependencies struct {
	Logger          *log.Logger
	Addr            string
	Engine          *service.Engine
	VerifyService   *service.VerifyService
	RegisterService *service.RegisterService
}

type Server struct {
	httpServer      *http.Server
	logger          *log.Logger
	engine          *service.Engine
	verifyService   *service.VerifyService
	registerService *service.RegisterService
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:          d.Logger,
		engine:          d.Engine,
		verifyService:   d.VerifyService,
		registerService: d.RegisterService,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(d.Logger))

	// Verify and register are called from browser approval pages; the event
	// endpoint is pipeline-to-server only but shares the policy for
	// simplicity.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Post("/v1/events", s.handleEvents)
	r.Post("/v1/verify", s.handleVerify)
	r.Post("/v1/register", s.handleRegister)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var req types.EventBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp := s.engine.ProcessBatch(r.Context(), req.Events)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.verifyService.Redeem(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			writeError(w, http.StatusBadRequest, "invalid_code", err.Error())
			return
		}
		s.logger.Printf("verify error: %v", err)
		writeError(w, http.StatusServiceUnavailable, "unavailable", "store temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.registerService.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDisplayName) {
			writeError(w, http.StatusBadRequest, "invalid_display_name", err.Error())
			return
		}
		s.logger.Printf("register error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return false
	}
	return true
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}
