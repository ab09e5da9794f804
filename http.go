package lunohod

import (
	"encoding/json"
	"net/http"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Results are the outcome of a run, served read-only once the run is over.
type Results struct {
	Summary    Summary     `json:"summary"`
	Comparison *Comparison `json:"comparison,omitempty"`
	Series     Aligned     `json:"series"`
}

// NewRouter returns the HTTP routes exposing the results and the metrics (when not nil).
func NewRouter(res Results, metrics *Metrics, logger kitlog.Logger) *mux.Router {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "http")
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Log("level", "warning", "err", err)
		}
	}
	router := mux.NewRouter()
	router.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, res.Summary)
	}).Methods("GET")
	router.HandleFunc("/comparison", func(w http.ResponseWriter, r *http.Request) {
		if res.Comparison == nil {
			http.Error(w, "no reference was loaded", http.StatusNotFound)
			return
		}
		writeJSON(w, res.Comparison)
	}).Methods("GET")
	router.HandleFunc("/series/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		pair, ok := res.Series.Pair(name)
		if !ok {
			http.Error(w, "unknown series "+name, http.StatusNotFound)
			return
		}
		writeJSON(w, pair)
	}).Methods("GET")
	if metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}
	return router
}
