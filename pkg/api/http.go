package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatroom/pkg/api/handlers"
	"chatroom/pkg/chat"
)

// Handler assembles the HTTP surface:
//   - GET  /participants, POST /participants
//   - GET  /messages, POST /messages, PUT/DELETE /messages/{id}
//   - POST /status (heartbeat)
//   - GET  /healthz, GET /metrics
func Handler(svc *chat.Service) http.Handler {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	handlers.RegisterParticipants(r, svc)
	handlers.RegisterMessages(r, svc)
	handlers.RegisterStatus(r, svc)
	return r
}
