package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dashboard-service/cache"
	"dashboard-service/editor"
	"dashboard-service/models"
	"dashboard-service/store"
)

// Handler serves the dashboards, widgets and preferences resources. Reads are
// answered from the caches; writes go to storage first and reach the caches
// only once storage accepted them.
type Handler struct {
	dashboards     *store.Collection[*models.Dashboard]
	widgets        *store.Collection[*models.Widget]
	dashboardCache *cache.EntityCache[*models.Dashboard]
	widgetCache    *cache.EntityCache[*models.Widget]
	prefs          *store.Preferences
	logger         *slog.Logger
}

func NewHandler(slots store.SlotStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dashboards:     store.NewDashboards(slots, logger),
		widgets:        store.NewWidgets(slots, logger),
		dashboardCache: cache.NewEntityCache[*models.Dashboard](),
		widgetCache:    cache.NewEntityCache[*models.Widget](),
		prefs:          store.NewPreferences(slots, logger),
		logger:         logger,
	}
}

// Load fills the caches from storage.
func (h *Handler) Load(ctx context.Context) error {
	if err := h.dashboardCache.Load(ctx, h.dashboards); err != nil {
		return err
	}
	if err := h.widgetCache.Load(ctx, h.widgets); err != nil {
		return err
	}
	h.logger.Info("caches loaded", "dashboards", h.dashboardCache.Len(), "widgets", h.widgetCache.Len())
	return nil
}

// Routes returns the service's request router, wrapped in request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dashboards", h.DashboardsHandler)
	mux.HandleFunc("/dashboards/", h.DashboardsHandler)
	mux.HandleFunc("/widgets", h.WidgetsHandler)
	mux.HandleFunc("/widgets/", h.WidgetsHandler)
	mux.HandleFunc("/preferences", h.PreferencesHandler)
	mux.HandleFunc("/preferences/", h.PreferencesHandler)
	mux.HandleFunc("/tags", h.TagsHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			respondWithError(w, http.StatusNotFound, "Not found")
			return
		}
		w.Write([]byte("Dashboard service is running."))
	})
	return logRequests(mux, h.logger)
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Error marshalling JSON: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// pathParts splits "/widgets/abc/components" into ["widgets" "abc" "components"].
func pathParts(r *http.Request) []string {
	return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
}

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNameRequired),
		errors.Is(err, models.ErrInvalidLayout),
		errors.Is(err, models.ErrInvalidTree),
		errors.Is(err, models.ErrUnknownKind),
		errors.Is(err, models.ErrInvalidProperty),
		errors.Is(err, models.ErrKindMismatch),
		errors.Is(err, editor.ErrNotContainer),
		errors.Is(err, editor.ErrCycle):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail reports err to the client. Storage failures are logged.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Warn(message, "error", err)
	}
	respondWithError(w, code, fmt.Sprintf("%s: %v", message, err))
}

// failDecode reports a request body that could not be read. Oversized bodies
// are 413, bodies that parse but carry invalid values are 422, anything else
// is 400.
func failDecode(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		code = http.StatusRequestEntityTooLarge
	case statusFor(err) == http.StatusUnprocessableEntity:
		code = http.StatusUnprocessableEntity
	}
	respondWithError(w, code, "Invalid request payload: "+err.Error())
}

func methodNotAllowed(w http.ResponseWriter) {
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// TagsHandler lists tag usage for both collections.
func (h *Handler) TagsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]cache.TagCount{
		"dashboards": h.dashboardCache.Tags(),
		"widgets":    h.widgetCache.Tags(),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
