package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ppiankov/clausewise/internal/cache"
	"github.com/ppiankov/clausewise/internal/extract"
	"github.com/ppiankov/clausewise/internal/model"
	"github.com/ppiankov/clausewise/internal/pipeline"
)

const (
	multipartMemory = 8 << 20
	pingTimeout     = 5 * time.Second
)

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Success      bool                   `json:"success"`
	ID           string                 `json:"id"`
	TotalClauses int                    `json:"total_clauses"`
	Clauses      []model.AnalysisResult `json:"clauses"`
	Summary      model.Summary          `json:"summary"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail"`
}

type healthResponse struct {
	Status         string `json:"status"`
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	ModelAvailable bool   `json:"model_available"`
}

// handleAnalyze accepts a multipart "file" upload or a JSON {"text": ...} body
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		report *model.Report
		err    error
	)
	if mediaType == "multipart/form-data" {
		report, err = s.analyzeUpload(r)
	} else {
		report, err = s.analyzeBody(r)
	}

	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:      true,
		ID:           report.ID,
		TotalClauses: report.TotalClauses,
		Clauses:      report.Clauses,
		Summary:      report.Summary,
	})
}

// badRequest marks client errors that are not pipeline terminal conditions
type badRequest struct {
	reason string
	err    error
}

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func (s *Server) analyzeUpload(r *http.Request) (*model.Report, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, &badRequest{reason: "InvalidUpload", err: err}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &badRequest{reason: "InvalidUpload", err: fmt.Errorf("file field: %w", err)}
	}
	defer func() { _ = file.Close() }()

	ext := filepath.Ext(header.Filename)
	if _, err := extract.FormatOf(header.Filename); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.cfg.UploadDir, "clausewise-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = io.Copy(tmp, file)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	report, err := s.analyzer.AnalyzeSource(r.Context(), tmp.Name())
	if err != nil {
		return nil, err
	}
	report.Source = header.Filename
	return report, nil
}

func (s *Server) analyzeBody(r *http.Request) (*model.Report, error) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &badRequest{reason: "InvalidRequest", err: fmt.Errorf("decode body: %w", err)}
	}
	return s.analyzer.AnalyzeText(r.Context(), req.Text, model.FormatRaw)
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	reason := pipeline.FailureReason(err)

	var (
		bad      *badRequest
		tooLarge *http.MaxBytesError
	)
	switch {
	case reason != "":
		status = http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.Is(err, extract.ErrTooLarge):
		status, reason = http.StatusRequestEntityTooLarge, "TooLarge"
	case errors.As(err, &bad):
		status, reason = http.StatusBadRequest, bad.reason
	case errors.Is(err, extract.ErrUnsupportedFormat):
		status, reason = http.StatusBadRequest, "UnsupportedFormat"
	case errors.Is(err, extract.ErrMalformed):
		status, reason = http.StatusBadRequest, "InvalidDocument"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, reason = http.StatusServiceUnavailable, "Cancelled"
	default:
		reason = "AnalysisFailed"
	}

	log := s.logger.Info
	if status >= http.StatusInternalServerError {
		log = s.logger.Error
	}
	log("analysis failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("reason", reason),
		zap.Error(err),
	)

	writeJSON(w, status, failureResponse{Success: false, Reason: reason, Detail: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy"}
	if s.pinger != nil {
		resp.Provider = s.pinger.Name()
		resp.Model = s.modelName
		resp.ModelAvailable = s.modelAvailable(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

// modelAvailable pings the provider at most once per health cache TTL
func (s *Server) modelAvailable(ctx context.Context) bool {
	key := cache.Key("health", s.pinger.Name())
	if cached, ok := s.health.Get(key); ok {
		return string(cached) == "up"
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	state := "up"
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("model provider unreachable", zap.String("provider", s.pinger.Name()), zap.Error(err))
		state = "down"
	}
	_ = s.health.Set(key, []byte(state), 0)
	return state == "up"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
