package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/config"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/editorial"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

const maxBodyBytes = 64 << 10

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}
	token := cfg.Paths.APIToken

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("GET /api/items", authMiddleware(token, srv.handleListItems))
	mux.HandleFunc("POST /api/items", authMiddleware(token, srv.handleCreateItem))
	mux.HandleFunc("GET /api/items/{id}", authMiddleware(token, srv.handleGetItem))
	mux.HandleFunc("POST /api/items/{id}/publish", authMiddleware(token, srv.handlePublish))
	mux.HandleFunc("POST /api/items/{id}/reschedule", authMiddleware(token, srv.handleReschedule))
	mux.HandleFunc("POST /api/items/{id}/toggle", authMiddleware(token, srv.handleToggle))
	mux.HandleFunc("POST /api/sweep", authMiddleware(token, srv.handleSweep))

	srv.server = &http.Server{
		Handler:           withCorrelationID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithCorrelationID(r.Context(), id)))
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	scheduler := api.FromSnapshot(status.Scheduler)
	if status.NextScheduled != nil {
		scheduler.NextScheduled = status.NextScheduled.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		ItemCounts:   api.FromStats(status.ItemCounts),
		Scheduler:    scheduler,
	})
}

func (s *apiServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	statuses, err := parseStatusFilter(r.URL.Query()["status"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.daemon.Editorial().List(r.Context(), statuses...)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ItemListResponse{Items: api.FromItems(items)})
}

func (s *apiServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.daemon.Editorial().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ItemResponse{Item: api.FromItem(item)})
}

func (s *apiServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req api.CreateItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	create := editorial.CreateRequest{Title: req.Title, Kind: content.Kind(strings.TrimSpace(req.Kind))}
	if value := strings.TrimSpace(req.ScheduledFor); value != "" {
		at, err := api.ParseTime(value)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid scheduledFor %q: expected RFC3339", value))
			return
		}
		create.RequestedTime = &at
	}
	item, err := s.daemon.Editorial().Create(r.Context(), create)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ItemResponse{Item: api.FromItem(item)})
}

func (s *apiServer) handlePublish(w http.ResponseWriter, r *http.Request) {
	result, err := s.daemon.Editorial().PublishNow(r.Context(), r.PathValue("id"))
	s.writeCommand(w, r, result, err)
}

func (s *apiServer) handleReschedule(w http.ResponseWriter, r *http.Request) {
	var req api.RescheduleRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	value := strings.TrimSpace(req.ScheduledFor)
	if value == "" {
		s.writeError(w, http.StatusBadRequest, "scheduledFor is required")
		return
	}
	at, err := api.ParseTime(value)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid scheduledFor %q: expected RFC3339", value))
		return
	}
	result, err := s.daemon.Editorial().Reschedule(r.Context(), r.PathValue("id"), at)
	s.writeCommand(w, r, result, err)
}

func (s *apiServer) handleToggle(w http.ResponseWriter, r *http.Request) {
	result, err := s.daemon.Editorial().Toggle(r.Context(), r.PathValue("id"))
	s.writeCommand(w, r, result, err)
}

func (s *apiServer) handleSweep(w http.ResponseWriter, r *http.Request) {
	report := s.daemon.RunSweep(r.Context())
	s.writeJSON(w, http.StatusOK, api.FromReport(report))
}

func (s *apiServer) writeCommand(w http.ResponseWriter, r *http.Request, result editorial.Result, err error) {
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CommandResponse{
		Outcome: string(result.Outcome),
		Item:    api.FromItem(result.Item),
	})
}

func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.log()).Error("api request failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
			logging.String(logging.FieldEventType, "api_request_failed"),
		)
	}
	s.writeError(w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, editorial.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, publication.ErrInvalidSchedule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, publication.ErrPublished):
		return http.StatusConflict
	case errors.Is(err, content.ErrInvalidItem):
		return http.StatusBadRequest
	case errors.Is(err, content.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseStatusFilter(values []string) ([]publication.Status, error) {
	var statuses []publication.Status
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status, ok := publication.ParseStatus(part)
			if !ok {
				return nil, fmt.Errorf("unknown status %q", part)
			}
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
