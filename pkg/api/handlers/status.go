package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"chatroom/pkg/chat"
	"chatroom/pkg/utils"
)

// RegisterStatus registers the heartbeat endpoint.
func RegisterStatus(r *mux.Router, svc *chat.Service) {
	h := &statusHandlers{svc: svc}
	r.HandleFunc("/status", h.heartbeat).Methods(http.MethodPost)
}

type statusHandlers struct {
	svc *chat.Service
}

func (h *statusHandlers) heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Heartbeat(userHeader(r)); err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
}
