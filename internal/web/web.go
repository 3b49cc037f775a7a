package web

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"photodiary/internal/agg"
	"photodiary/internal/config"
	"photodiary/internal/diary"
	"photodiary/internal/ics"
	appLog "photodiary/internal/log"
	"photodiary/internal/model"
	"photodiary/internal/reminder"
	"photodiary/internal/storage"
)

// Server exposes the diary to the calendar/list UI and the entry form:
// event CRUD, per-day aggregation, active reminders, the legend flag and an
// iCalendar feed.
type Server struct {
	cfg   *config.Config
	store *diary.Store
	sched *reminder.Scheduler
	kv    storage.Store
	loc   *time.Location
	mux   *http.ServeMux
}

// embeddedStatic contains the built-in single-page UI.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, store *diary.Store, sched *reminder.Scheduler, kv storage.Store, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg:   cfg,
		store: store,
		sched: sched,
		kv:    kv,
		loc:   loc,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password is treated as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="photodiary", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/events/", s.handleEventByID)
	s.mux.HandleFunc("/api/day", s.handleDay)
	s.mux.HandleFunc("/api/reminders", s.handleReminders)
	s.mux.HandleFunc("/api/legend", s.handleLegend)
	s.mux.HandleFunc("/calendar.ics", s.handleCalendarFeed)

	// Embedded single-page UI. All non-/api/* paths fall back to this.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventsResponse is the JSON response shape for GET /api/events.
type eventsResponse struct {
	Events    []model.EventBlock `json:"events"`
	Count     int                `json:"count"`
	Order     string             `json:"order"`
	WeekStart string             `json:"week_start"`
}

// handleEvents serves the full collection and accepts new/updated records.
//
// GET  /api/events?order=asc|desc   (default asc; desc is the past-list order)
// POST /api/events                  body: EventBlock JSON
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listEvents(w, r)
	case http.MethodPost:
		s.saveEvent(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	order := r.URL.Query().Get("order")
	descending := order == "desc"
	if !descending {
		order = "asc"
	}

	events := agg.SortByDate(s.store.All(), descending, s.loc)
	writeJSON(w, http.StatusOK, eventsResponse{
		Events:    events,
		Count:     len(events),
		Order:     order,
		WeekStart: s.cfg.WeekStart,
	})
}

// saveEvent is the entry-form boundary: field validation happens here, never
// in the store. A new record gets its id and createdAt assigned; an update
// keeps the original createdAt regardless of what the client sent.
func (s *Server) saveEvent(w http.ResponseWriter, r *http.Request) {
	var block model.EventBlock
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event payload")
		return
	}

	block.Name = strings.TrimSpace(block.Name)
	if strings.TrimSpace(block.Date) == "" {
		writeError(w, http.StatusBadRequest, "event date is required")
		return
	}

	if block.ID == "" {
		block.ID = diary.NewID()
		block.CreatedAt = time.Now().UnixMilli()
	} else if existing, ok := s.findEvent(block.ID); ok {
		block.CreatedAt = existing.CreatedAt
	} else if block.CreatedAt == 0 {
		block.CreatedAt = time.Now().UnixMilli()
	}

	if err := block.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.store.Save(block)
	appLog.Info("event saved", "id", block.ID, "date", block.Date, "day_type", block.DayType)
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) findEvent(id string) (model.EventBlock, bool) {
	for _, e := range s.store.All() {
		if e.ID == id {
			return e, true
		}
	}
	return model.EventBlock{}, false
}

// handleEventByID handles DELETE /api/events/{id}.
func (s *Server) handleEventByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/events/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Deleting an absent id is a no-op by contract, so this always succeeds.
	s.store.Delete(id)
	appLog.Info("event deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// dayResponse is the JSON response shape for GET /api/day.
type dayResponse struct {
	Date   string                `json:"date"`
	Events []model.EventBlock    `json:"events"`
	Counts map[model.DayType]int `json:"counts"`
	IsPast bool                  `json:"is_past"`
}

// handleDay returns the calendar-cell facts for one day.
//
// GET /api/day?date=2024-06-10
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := r.URL.Query().Get("date")
	day, err := time.ParseInLocation("2006-01-02", raw, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	dayEvents := agg.EventsOnDay(s.store.All(), day, s.loc)
	writeJSON(w, http.StatusOK, dayResponse{
		Date:   raw,
		Events: dayEvents,
		Counts: agg.CountsByType(dayEvents),
		IsPast: agg.IsPast(day, time.Now(), s.loc),
	})
}

// remindersResponse is the JSON response shape for GET /api/reminders.
type remindersResponse struct {
	Reminders []model.ActiveReminder `json:"reminders"`
	Total     int                    `json:"total"`
	Limit     int                    `json:"limit"`
}

// handleReminders returns the currently-active banner set.
//
// GET /api/reminders?limit=3
//
// The engine computes the complete set; limit (default config banner_limit)
// only trims what this endpoint hands to the UI. Total always reflects the
// untrimmed count.
func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), s.cfg.BannerLimit)
	active := s.sched.Active()

	writeJSON(w, http.StatusOK, remindersResponse{
		Reminders: reminder.Truncate(active, limit),
		Total:     len(active),
		Limit:     limit,
	})
}

// legendResponse is the JSON shape for the legend-hidden flag.
type legendResponse struct {
	Hidden bool `json:"hidden"`
}

// handleLegend reads and writes the UI legend flag. The flag is pure
// presentation state; it shares the persistence port but never touches the
// event collection.
func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, ok, err := s.kv.Load(storage.KeyLegendHidden)
		if err != nil {
			appLog.Error("legend flag load failed", err)
		}
		hidden := ok && strings.TrimSpace(string(data)) == "true"
		writeJSON(w, http.StatusOK, legendResponse{Hidden: hidden})

	case http.MethodPut, http.MethodPost:
		var req legendResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid legend payload")
			return
		}
		value := "false"
		if req.Hidden {
			value = "true"
		}
		if err := s.kv.Save(storage.KeyLegendHidden, []byte(value)); err != nil {
			appLog.Error("legend flag save failed", err)
			writeError(w, http.StatusInternalServerError, "failed to save legend flag")
			return
		}
		writeJSON(w, http.StatusOK, req)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCalendarFeed serves the diary as an iCalendar document.
func (s *Server) handleCalendarFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body := ics.Serialize(s.store.All(), s.loc)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="photodiary.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// staticFileServer returns an http.Handler that serves the embedded UI.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Never serve HTML where an API caller expects JSON; a missing API
		// route must 404.
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			http.NotFound(w, r)
			return
		}

		fileServer.ServeHTTP(w, r)
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
