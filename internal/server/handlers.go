package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/fetch"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/report"
	"github.com/jonathan/resume-matcher/internal/store"
)

// maxUploadBytes bounds the total multipart form size.
const maxUploadBytes = 64 << 20

var validate = validator.New()

// matchRequest is the validated form of a POST /match request.
type matchRequest struct {
	JobDescription string `validate:"required"`
	CandidateCount int    `validate:"gte=1"`
}

// matchResponse is the response for a completed synchronous match.
type matchResponse struct {
	SessionID      string            `json:"session_id"`
	RelevantSkills []string          `json:"relevant_skills"`
	Results        []pipeline.Result `json:"results"`
	DownloadToken  string            `json:"download_token,omitempty"`
}

// asyncResponse acknowledges an asynchronous match.
type asyncResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// handleMatch scores uploaded candidate documents against a job
// description. The default mode is synchronous; ?async=1 returns
// immediately and streams progress over /ws/progress/{id}.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	jobDescription := r.FormValue("job_description")
	if jobDescription == "" {
		if jobURL := r.FormValue("job_url"); jobURL != "" {
			text, err := fetch.JobDescription(r.Context(), jobURL, s.cfg.UseBrowser)
			if err != nil {
				s.errorResponse(w, http.StatusBadGateway, "failed to fetch job description: "+err.Error())
				return
			}
			jobDescription = text
		}
	}

	files := r.MultipartForm.File["resumes"]

	req := matchRequest{JobDescription: jobDescription, CandidateCount: len(files)}
	if err := validate.Struct(req); err != nil {
		switch {
		case jobDescription == "":
			s.errorResponse(w, http.StatusBadRequest, "job_description (or job_url) is required")
		default:
			s.errorResponse(w, http.StatusBadRequest, "at least one resume file is required")
		}
		return
	}

	// Extraction failures become empty text: the document scores zero
	// instead of failing the batch.
	candidates := make([]pipeline.Candidate, 0, len(files))
	for _, fh := range files {
		candidates = append(candidates, pipeline.Candidate{
			Name: fh.Filename,
			Text: extractUpload(fh.Filename, fh),
		})
	}

	sessionID := uuid.New()
	matcher := pipeline.New(s.catalog, s.norm, pipeline.Options{
		RequirementThreshold: s.cfg.RequirementThreshold,
		CandidateThreshold:   s.cfg.CandidateThreshold,
		MaxWorkers:           s.cfg.MaxWorkers,
		OnProgress: func(event pipeline.ProgressEvent) {
			s.hub.Publish(sessionID, event)
		},
	})

	if r.URL.Query().Get("async") != "" {
		go func() {
			defer s.hub.Close(sessionID)
			if _, err := s.runBatch(context.Background(), sessionID, matcher, jobDescription, candidates); err != nil {
				log.Printf("Async batch %s failed: %v", sessionID, err)
			}
		}()
		s.jsonResponse(w, http.StatusAccepted, asyncResponse{
			SessionID: sessionID.String(),
			Status:    "processing",
		})
		return
	}

	session, err := s.runBatch(r.Context(), sessionID, matcher, jobDescription, candidates)
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			s.errorResponse(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "matching failed: "+err.Error())
		return
	}

	resp := matchResponse{
		SessionID:      session.ID.String(),
		RelevantSkills: session.Relevant,
		Results:        session.Results,
	}
	if s.tokens != nil {
		token, err := s.tokens.Generate(session.ID)
		if err != nil {
			log.Printf("Failed to issue download token: %v", err)
		} else {
			resp.DownloadToken = token
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// runBatch executes the pipeline, records metrics, stores the session
// and optionally persists batch history.
func (s *Server) runBatch(ctx context.Context, sessionID uuid.UUID, matcher *pipeline.Matcher, jobDescription string, candidates []pipeline.Candidate) (*store.Session, error) {
	start := time.Now()
	batch, err := matcher.Run(ctx, jobDescription, candidates)
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			observability.RecordBatch("validation_error", time.Since(start).Seconds())
		} else {
			observability.RecordBatch("error", time.Since(start).Seconds())
		}
		return nil, err
	}

	observability.RecordBatch("ok", time.Since(start).Seconds())
	observability.CandidatesTotal.Add(float64(len(batch.Results)))
	for _, res := range batch.Results {
		if res.Err != "" {
			observability.CandidateFaultsTotal.Inc()
		}
	}

	session := &store.Session{
		ID:          sessionID,
		CreatedAt:   time.Now(),
		Requirement: jobDescription,
		Relevant:    batch.Relevant,
		Results:     batch.Results,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		log.Printf("Failed to store session %s: %v", sessionID, err)
	}

	if s.history != nil {
		if err := s.history.SaveBatch(ctx, jobDescription, batch); err != nil {
			log.Printf("Failed to persist batch history: %v", err)
		}
	}

	return session, nil
}

// handleResults returns a stored session.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, matchResponse{
		SessionID:      session.ID.String(),
		RelevantSkills: session.Relevant,
		Results:        session.Results,
	})
}

// handleReport streams the CSV report for a session. When token signing
// is configured, a valid ?token= for this session is required.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if s.tokens != nil {
		id, err := s.tokens.Validate(r.URL.Query().Get("token"))
		if err != nil || id != session.ID {
			s.errorResponse(w, http.StatusForbidden, "invalid download token")
			return
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(session)))
	if err := report.WriteCSV(w, session); err != nil {
		log.Printf("Failed to write report for %s: %v", session.ID, err)
	}
}

// suggestionsRequest names the candidate to generate suggestions for.
type suggestionsRequest struct {
	Filename string `json:"filename" validate:"required"`
}

// handleSuggestions generates improvement suggestions for one
// candidate's missing skills via the optional LLM backend.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return
	}

	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "filename is required")
		return
	}

	var missing []string
	found := false
	for _, res := range session.Results {
		if res.Name == req.Filename {
			missing = res.Missing
			found = true
			break
		}
	}
	if !found {
		s.errorResponse(w, http.StatusNotFound, "no such candidate in session")
		return
	}

	suggestions, err := s.suggester.Suggestions(r.Context(), session.Requirement, missing)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "suggestion generation failed: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"filename":    req.Filename,
		"missing":     missing,
		"suggestions": suggestions,
	})
}

// handleListBatches returns recent batch history when a database is
// configured.
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusNotFound, "batch history is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	batches, err := s.history.ListBatches(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list batches: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"batches": batches})
}

// handleHealth reports service liveness and catalog size.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"skills": s.catalog.Len(),
	})
}

// lookupSession resolves the {id} path segment to a stored session,
// writing the error response itself when it cannot.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid session ID")
		return nil, false
	}
	session, err := s.sessions.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, "session not found or expired")
		return nil, false
	}
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load session: "+err.Error())
		return nil, false
	}
	return session, true
}

// extractUpload reads one uploaded file and extracts its text.
// Unreadable or unsupported files yield empty text.
func extractUpload(filename string, fh *multipart.FileHeader) string {
	f, err := fh.Open()
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return ""
	}
	return extraction.Text(filename, data)
}
