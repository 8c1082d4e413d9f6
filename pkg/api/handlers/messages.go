package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatroom/pkg/chat"
	"chatroom/pkg/models"
	"chatroom/pkg/utils"
)

// RegisterMessages registers HTTP handlers for the message log.
func RegisterMessages(r *mux.Router, svc *chat.Service) {
	h := &messageHandlers{svc: svc}
	r.HandleFunc("/messages", h.create).Methods(http.MethodPost)
	r.HandleFunc("/messages", h.list).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/messages/{id}", h.delete).Methods(http.MethodDelete)
}

type messageHandlers struct {
	svc *chat.Service
}

type messagePayload struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

func (h *messageHandlers) create(w http.ResponseWriter, r *http.Request) {
	var body messagePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}
	m, err := h.svc.PostMessage(userHeader(r), body.To, body.Text, body.Type)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}

func (h *messageHandlers) list(w http.ResponseWriter, r *http.Request) {
	// non-positive or unparseable limit means the full visible set
	limit := 0
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		if lim, err := strconv.Atoi(limStr); err == nil && lim > 0 {
			limit = lim
		}
	}
	msgs, err := h.svc.VisibleMessages(userHeader(r), limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, msgs)
}

func (h *messageHandlers) update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body messagePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}
	if err := h.svc.EditMessage(userHeader(r), id, body.To, body.Text, body.Type); err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"id": id})
}

func (h *messageHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.DeleteMessage(userHeader(r), id); err != nil {
		writeErr(w, r, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"id": id})
}
