package chat

import "chatroom/pkg/models"

// Filter returns the subset of msgs visible to viewer, preserving relative
// order. A positive limit keeps only the last limit entries of the
// filtered result; zero or negative means no limit, and a limit larger
// than the filtered count returns everything.
func Filter(msgs []models.Message, viewer string, limit int) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.VisibleTo(viewer) {
			out = append(out, m)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[len(out)-limit:]
	}
	return out
}
