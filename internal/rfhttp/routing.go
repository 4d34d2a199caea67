package rfhttp

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterDebugHandlers(r *mux.Router, version, commit, buildDate string) {
	r.Handle("/debug/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.Handle("/debug/health", HealthHandler()).Methods(http.MethodGet)
	r.Handle("/debug/about", AboutHandler(version, commit, buildDate)).Methods(http.MethodGet)
}

func RegisterRemoteHandlers(r *mux.Router, h *RemoteHandler) {
	r.Handle("/", h).Methods(http.MethodPost)
	r.Handle("/RPC2", h).Methods(http.MethodPost)
}
