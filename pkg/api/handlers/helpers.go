package handlers

import (
	"errors"
	"net/http"

	"chatroom/pkg/chat"
	"chatroom/pkg/logger"
	"chatroom/pkg/utils"
)

// userHeader returns the claimed requester identity. It is not verified;
// the core only ever compares it against stored message authorship.
func userHeader(r *http.Request) string {
	return r.Header.Get("User")
}

// writeErr maps typed domain errors to their HTTP status; anything else
// becomes a logged 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var ce *chat.Error
	if errors.As(err, &ce) {
		if ce.Status >= http.StatusInternalServerError {
			logger.Error("request_failed", "path", r.URL.Path, "code", ce.Code, "error", err)
		}
		utils.JSONError(w, ce.Status, ce.Message)
		return
	}
	logger.Error("request_failed", "path", r.URL.Path, "error", err)
	utils.JSONError(w, http.StatusInternalServerError, "internal error")
}
