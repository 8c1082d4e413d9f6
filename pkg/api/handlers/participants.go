package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chatroom/pkg/chat"
	"chatroom/pkg/models"
	"chatroom/pkg/utils"
)

// RegisterParticipants registers HTTP handlers for the participant
// registry.
func RegisterParticipants(r *mux.Router, svc *chat.Service) {
	h := &participantHandlers{svc: svc}
	r.HandleFunc("/participants", h.list).Methods(http.MethodGet)
	r.HandleFunc("/participants", h.create).Methods(http.MethodPost)
}

type participantHandlers struct {
	svc *chat.Service
}

func (h *participantHandlers) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.Participants()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if ps == nil {
		ps = []models.Participant{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, ps)
}

func (h *participantHandlers) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}
	p, err := h.svc.Join(body.Name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	// echo the sanitized name so clients use the stored spelling
	_ = utils.JSONWrite(w, http.StatusCreated, map[string]string{"name": p.Name})
}
