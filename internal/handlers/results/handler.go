package results

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	resultsvc "gitlab.com/dse-2025.net/internal/core/services/results"
	"gitlab.com/dse-2025.net/internal/handlers/response"
)

const defaultBestN = 10

// StoreInfo describes the running store for the /api/info endpoint.
type StoreInfo struct {
	Name    string `json:"name"`
	Backend string `json:"backend"`
}

// ApiHandler serves the read-only inspection API for a running exploration.
type ApiHandler struct {
	store  resultsvc.IResultStore
	info   StoreInfo
	logger primary.Logger
}

func NewHandler(store resultsvc.IResultStore, info StoreInfo, logger primary.Logger) *ApiHandler {
	return &ApiHandler{
		store:  store,
		info:   info,
		logger: logger,
	}
}

func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/info", api.GetInfo).Methods("GET")
	r.HandleFunc("/api/results/count", api.GetCount).Methods("GET")
	r.HandleFunc("/api/results/best", api.GetBest).Methods("GET")
	r.HandleFunc("/api/results/{key}", api.GetResult).Methods("GET")
}

func (api *ApiHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, api.info)
}

func (api *ApiHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	count, err := api.store.Count(r.Context())
	if err != nil {
		api.logger.Error("Failed to count results", "error", err)
		response.WriteError(w, response.ErrorMessage{
			Message:    "Failed to count results",
			StatusCode: http.StatusInternalServerError,
		})
		return
	}

	response.WriteSuccess(w, map[string]int{"count": count})
}

// GetBest returns the current best-n snapshot without consuming the cache.
func (api *ApiHandler) GetBest(w http.ResponseWriter, r *http.Request) {
	n := defaultBestN
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.WriteError(w, response.ErrorMessage{
				Message:    "Invalid n",
				StatusCode: http.StatusBadRequest,
			})
			return
		}
		n = parsed
	}

	response.WriteSuccess(w, api.store.PeekBest(n))
}

func (api *ApiHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	result, err := api.store.Query(r.Context(), key)
	if err != nil {
		api.logger.Error("Failed to query the result", "key", key, "error", err)
		response.WriteError(w, response.ErrorMessage{
			Message:    "Failed to query the result",
			StatusCode: http.StatusInternalServerError,
		})
		return
	}
	if result == nil {
		response.WriteError(w, response.ErrorMessage{
			Message:    "Result not found",
			StatusCode: http.StatusNotFound,
		})
		return
	}

	response.WriteSuccess(w, result)
}
