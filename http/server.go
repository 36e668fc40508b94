package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/revise"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before shutdown.
const ShutdownTimeout = 5 * time.Second

// Server serves the campaign and row endpoints.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	// Bind address for the server's listener.
	Addr string

	Batch    revise.BatchService
	Progress revise.ProgressService
	Logger   *slog.Logger

	// unit serializes every handler that processes a page, so two units
	// never append to the sheet at the same time.
	unit sync.Mutex
}

// NewServer returns a new Server with its routes registered.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{},
		router: chi.NewRouter(),
		Logger: slog.Default(),
	}
	s.server.Handler = s.router

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/batch", s.handleBatch)
	s.router.Get("/batch/unit", s.handleUnit)
	s.router.Get("/rows", s.handleRows)
	s.router.Get("/rows/{row}", s.handleRow)
	s.router.Get("/campaigns", s.handleCampaigns)
	s.router.Get("/campaigns/{id}", s.handleCampaign)
	return s
}

// Open validates the server options and begins listening on the bind address.
func (s *Server) Open() (err error) {
	if s.Batch == nil {
		return revise.Errorf(revise.EINVALID, "batch service required")
	}
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go s.server.Serve(s.ln)
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the local base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// ServeHTTP makes Server usable as an http.Handler, mostly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func(begin time.Time) {
			s.Logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration", time.Since(begin),
			)
		}(time.Now())
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// BatchSummary is the JSON body of an ajax /batch step.
type BatchSummary struct {
	Campaign        string   `json:"campaign"`
	Success         int      `json:"success"`
	Errors          int      `json:"errors"`
	Skipped         int      `json:"skipped"`
	HasMore         bool     `json:"hasMore"`
	NextOffset      int      `json:"nextOffset"`
	ProcessLimit    int      `json:"processLimit"`
	Processed       int      `json:"processed"`
	Total           int      `json:"total"`
	SuccessMessages []string `json:"successMessages"`
	ErrorMessages   []string `json:"errorMessages"`
	SkippedMessages []string `json:"skippedMessages"`
}

func newBatchSummary(result *revise.StepResult) *BatchSummary {
	p := result.Progress
	return &BatchSummary{
		Campaign:        p.CampaignID,
		Success:         len(p.Successes),
		Errors:          len(p.Errors),
		Skipped:         len(p.Skipped),
		HasMore:         result.HasMore,
		NextOffset:      result.NextOffset,
		ProcessLimit:    p.Limit,
		Processed:       p.Processed(),
		Total:           p.Total,
		SuccessMessages: nonNil(p.Successes),
		ErrorMessages:   nonNil(p.Errors),
		SkippedMessages: nonNil(p.Skipped),
	}
}

// handleBatch processes one unit of a campaign. Without ajax it redirects
// to itself for the next unit and renders a plain-text report at the end.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ajax := parseBool(q.Get("ajax"))
	req := revise.StepRequest{
		CampaignID: q.Get("campaign"),
		Offset:     queryInt(r, "offset", 0),
		Limit:      queryInt(r, "limit", revise.DefaultLimit),
	}

	s.unit.Lock()
	result, err := s.Batch.Step(r.Context(), req)
	s.unit.Unlock()
	if err != nil {
		if ajax {
			writeError(w, err)
		} else {
			http.Error(w, revise.ErrorMessage(err), errorStatus(err))
		}
		return
	}

	switch {
	case ajax:
		writeJSON(w, http.StatusOK, newBatchSummary(result))
	case result.HasMore:
		next := url.Values{}
		next.Set("campaign", result.Progress.CampaignID)
		next.Set("offset", strconv.Itoa(result.NextOffset))
		next.Set("limit", strconv.Itoa(result.Progress.Limit))
		http.Redirect(w, r, "/batch?"+next.Encode(), http.StatusSeeOther)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		writeReport(w, result.Progress)
	}
}

// UnitResponse is the JSON body of /batch/unit.
type UnitResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *UnitData `json:"data"`
}

// UnitData carries the record produced by a unit.
type UnitData struct {
	URL       string `json:"url"`
	Original  string `json:"original"`
	Issues    string `json:"issues"`
	Improved  string `json:"improved"`
	Timestamp string `json:"timestamp"`
}

func newUnitResponse(u *revise.UnitResult) *UnitResponse {
	resp := &UnitResponse{Success: u.Succeeded(), Message: u.Message}
	if u.Succeeded() && u.Record != nil {
		resp.Data = &UnitData{
			URL:       u.URL,
			Original:  u.Record.Original,
			Issues:    u.Record.Issues,
			Improved:  u.Record.Improved,
			Timestamp: u.Record.Timestamp,
		}
	}
	return resp
}

// handleUnit processes a single row outside any campaign.
func (s *Server) handleUnit(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(r.URL.Query().Get("row"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &UnitResponse{Message: "row must be an integer"})
		return
	}

	s.unit.Lock()
	unit, err := s.Batch.ProcessRow(r.Context(), row, r.URL.Query().Get("url"))
	s.unit.Unlock()
	if err != nil {
		writeJSON(w, errorStatus(err), &UnitResponse{Message: revise.ErrorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, newUnitResponse(unit))
}

// RowSummary is one entry of the /rows listing.
type RowSummary struct {
	Row          int     `json:"row"`
	URL          string  `json:"url"`
	Impressions  int     `json:"impressions"`
	Clicks       int     `json:"clicks"`
	CTR          float64 `json:"ctr"`
	Position     float64 `json:"position"`
	Improvements int     `json:"improvements"`
	LastImproved string  `json:"lastImproved,omitempty"`
}

func newRowSummary(a *revise.ArticleRow) RowSummary {
	summary := RowSummary{
		Row:          a.Row,
		URL:          a.Metrics.URL,
		Impressions:  a.Metrics.Impressions,
		Clicks:       a.Metrics.Clicks,
		CTR:          a.Metrics.CTR,
		Position:     a.Metrics.Position,
		Improvements: len(a.History),
	}
	if latest := a.Latest(); latest != nil {
		summary.LastImproved = latest.Timestamp
	}
	return summary
}

// handleRows lists rows in processing order. limit=0 lists every row.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	targets, err := s.Batch.Targets(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	summaries := make([]RowSummary, len(targets))
	for i, t := range targets {
		summaries[i] = newRowSummary(t)
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleRow returns one row with its full improvement history.
func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row <= 0 {
		writeError(w, revise.Errorf(revise.EINVALID, "invalid row"))
		return
	}

	targets, err := s.Batch.Targets(r.Context(), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, t := range targets {
		if t.Row == row {
			if t.History == nil {
				t.History = []*revise.ImprovementRecord{}
			}
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeError(w, revise.Errorf(revise.ENOTFOUND, "row %d not found", row))
}

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	if s.Progress == nil {
		writeError(w, revise.Errorf(revise.ENOTFOUND, "campaign store not configured"))
		return
	}
	progresses, err := s.Progress.FindProgresses(r.Context(), revise.ProgressFilter{
		Offset: queryInt(r, "offset", 0),
		Limit:  queryInt(r, "limit", 20),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progresses)
}

func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	if s.Progress == nil {
		writeError(w, revise.Errorf(revise.ENOTFOUND, "campaign store not configured"))
		return
	}
	p, err := s.Progress.FindProgress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// writeReport renders the end-of-campaign report.
func writeReport(w http.ResponseWriter, p *revise.BatchProgress) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "campaign %s finished\n", p.CampaignID)
	fmt.Fprintf(&sb, "targets: %d\n", p.Total)
	fmt.Fprintf(&sb, "succeeded: %d\n", len(p.Successes))
	fmt.Fprintf(&sb, "failed: %d\n", len(p.Errors))
	fmt.Fprintf(&sb, "skipped: %d\n", len(p.Skipped))
	fmt.Fprintf(&sb, "processed: %d / %d\n", p.Processed(), p.Total)
	for _, section := range []struct {
		title    string
		messages []string
	}{
		{"successes", p.Successes},
		{"errors", p.Errors},
		{"skipped", p.Skipped},
	} {
		if len(section.messages) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", section.title)
		for _, m := range section.messages {
			fmt.Fprintf(&sb, "- %s\n", m)
		}
	}
	_, _ = w.Write([]byte(sb.String()))
}

var codes = map[string]int{
	revise.EINVALID:  http.StatusBadRequest,
	revise.ENOTFOUND: http.StatusNotFound,
	revise.EFETCH:    http.StatusBadGateway,
	revise.EUPSTREAM: http.StatusBadGateway,
	revise.EPERSIST:  http.StatusBadGateway,
	revise.EEMPTY:    http.StatusUnprocessableEntity,
}

func errorStatus(err error) int {
	if status, ok := codes[revise.ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]any{
		"success": false,
		"code":    revise.ErrorCode(err),
		"message": revise.ErrorMessage(err),
	})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
