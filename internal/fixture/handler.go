package fixture

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	routeList    = "list"
	routeCount   = "count"
	routeGet     = "get"
	routeVersion = "version"
)

type handler struct {
	store   *Store
	version string
	logger  *slog.Logger
}

// NewHandler serves the evaluator API backed by store. Like the evaluator,
// the list requires both paging parameters; pageIndex is 1-based.
//
//	GET /conversations?pageIndex=&pageSize=
//	GET /conversations/count
//	GET /conversations/{id}
//	GET /version
//	GET /metrics
func NewHandler(store *Store, version string, logger *slog.Logger) http.Handler {
	h := &handler{
		store:   store,
		version: version,
		logger:  logger.With("component", "fixture_api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", h.handleList)
	mux.HandleFunc("GET /conversations/count", h.handleCount)
	mux.HandleFunc("GET /conversations/{id}", h.handleGet)
	mux.HandleFunc("GET /version", h.handleVersion)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	pageIndex, err := intParam(r, "pageIndex")
	if err != nil {
		h.writeError(w, routeList, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := intParam(r, "pageSize")
	if err != nil {
		h.writeError(w, routeList, http.StatusBadRequest, err.Error())
		return
	}

	conversations, err := h.store.ListConversations(r.Context(), pageIndex, pageSize)
	if err != nil {
		h.logger.Error("failed to list conversations", "error", err)
		h.writeError(w, routeList, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, routeList, http.StatusOK, conversations)
}

func (h *handler) handleCount(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.CountConversations(r.Context())
	if err != nil {
		h.logger.Error("failed to count conversations", "error", err)
		h.writeError(w, routeCount, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, routeCount, http.StatusOK, map[string]int{"total": total})
}

func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conversation, err := h.store.GetConversation(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, routeGet, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to get conversation", "conversation_id", id, "error", err)
		h.writeError(w, routeGet, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, routeGet, http.StatusOK, conversation)
}

// handleVersion answers with a bare JSON number when the version is numeric.
func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if _, err := strconv.ParseFloat(h.version, 64); err == nil {
		h.writeJSON(w, routeVersion, http.StatusOK, json.Number(h.version))
		return
	}
	h.writeJSON(w, routeVersion, http.StatusOK, h.version)
}

func (h *handler) writeJSON(w http.ResponseWriter, route string, status int, v any) {
	recordRequest(route, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", "route", route, "error", err)
	}
}

func (h *handler) writeError(w http.ResponseWriter, route string, status int, message string) {
	h.writeJSON(w, route, status, map[string]string{"message": message})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, errors.New("missing " + name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("invalid " + name + ": " + raw)
	}
	return n, nil
}
