package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cognicore/jotlens/pkg/jotlens"
	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/insight"
	"github.com/cognicore/jotlens/pkg/jotlens/internalerr"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Server exposes the engine over a JSON API plus an HTML report page.
type Server struct {
	engine *jotlens.Engine
	page   *template.Template
	mux    *http.ServeMux
}

// New creates a new Server.
func New(engine *jotlens.Engine) (*Server, error) {
	page, err := template.New("report.html").
		Funcs(template.FuncMap{"markdown": renderMarkdown}).
		ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}

	s := &Server{engine: engine, page: page, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/entries", s.handleSubmit)
	s.mux.HandleFunc("GET /api/entries", s.handleEntries)
	s.mux.HandleFunc("DELETE /api/entries/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /api/insights", s.handleInsights)
	s.mux.HandleFunc("GET /api/prompt", s.handlePrompt)
	s.mux.HandleFunc("GET /api/prompt/daily", s.handleDailyPrompt)
	s.mux.HandleFunc("GET /api/tasks", s.handleTasks)
	s.mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleCompleteTask)
	s.mux.HandleFunc("GET /report", s.handleReport)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/report", http.StatusFound)
	})
}

// textRequest carries entry text. Format "html" strips markup; anything
// else is stored as written.
type textRequest struct {
	Text   string     `json:"text"`
	Format string     `json:"format,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

func decodeText(r *http.Request) (textRequest, error) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %v: %w", err, internalerr.ErrInvalidInput)
	}
	format, err := ingest.ParseFormat(req.Format)
	if err != nil {
		return req, fmt.Errorf("%v: %w", err, internalerr.ErrInvalidInput)
	}
	req.Text = format.Plain(req.Text)
	return req, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeText(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Analyze(r.Context(), req.Text))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeText(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		ent   entry.Entry
		tasks []entry.Task
	)
	if req.Date != nil {
		ent, tasks, err = s.engine.SubmitAt(r.Context(), req.Text, *req.Date)
	} else {
		ent, tasks, err = s.engine.Submit(r.Context(), req.Text)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []entry.Task{}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": ent, "tasks": tasks})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.engine.Entries(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []entry.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	insights, err := s.engine.Insights(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	if insights == nil {
		insights = []insight.Insight{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "insights": insights})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	text, err := s.engine.Prompt(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": text})
}

func (s *Server) handleDailyPrompt(w http.ResponseWriter, r *http.Request) {
	p, ok, err := s.engine.LatestPrompt(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("no daily prompt yet: %w", internalerr.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	var status entry.TaskStatus
	switch q := r.URL.Query().Get("status"); q {
	case "", string(entry.TaskPending):
		status = entry.TaskPending
	case string(entry.TaskDone):
		status = entry.TaskDone
	case "all":
	default:
		writeError(w, fmt.Errorf("unknown status %q: %w", q, internalerr.ErrInvalidInput))
		return
	}

	tasks, err := s.engine.Tasks(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []entry.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("task id %q: %w", r.PathValue("id"), internalerr.ErrInvalidInput))
		return
	}
	if err := s.engine.CompleteTask(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rep, err := s.engine.Report(r.Context(), period)
	if err != nil {
		log.Printf("report: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = s.page.Execute(&buf, map[string]any{
		"Period":   period,
		"Periods":  []entry.Period{entry.Weekly, entry.Monthly, entry.All},
		"Markdown": rep.Markdown(),
	})
	if err != nil {
		log.Printf("template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func periodParam(r *http.Request) (entry.Period, error) {
	p, err := entry.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, internalerr.ErrInvalidInput)
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, internalerr.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		log.Printf("request failed: %v", err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve runs the server on addr until ctx is cancelled.
func Serve(ctx context.Context, engine *jotlens.Engine, addr string) error {
	srv, err := New(engine)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("serving on http://%s", addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
