package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatroom/pkg/models"
)

func sampleLog() []models.Message {
	return []models.Message{
		{ID: "1", From: "alice", To: models.Broadcast, Text: "joined", Type: models.TypeStatus},
		{ID: "2", From: "bob", To: models.Broadcast, Text: "hi", Type: models.TypePublic},
		{ID: "3", From: "bob", To: "alice", Text: "secret", Type: models.TypePrivate},
		{ID: "4", From: "alice", To: models.Broadcast, Text: "hey", Type: models.TypePublic},
		{ID: "5", From: "alice", To: "bob", Text: "reply", Type: models.TypePrivate},
	}
}

func ids(msgs []models.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestFilterPrivateVisibility(t *testing.T) {
	log := sampleLog()

	// sender and recipient see private messages, order preserved
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(Filter(log, "alice", 0)))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(Filter(log, "bob", 0)))

	// a bystander only sees public and status messages
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter(log, "carol", 0)))

	// an anonymous viewer is just another bystander
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter(log, "", 0)))
}

func TestFilterLimit(t *testing.T) {
	log := sampleLog()

	// last N of the filtered result, not of the raw log
	assert.Equal(t, []string{"2", "4"}, ids(Filter(log, "carol", 2)))
	assert.Equal(t, []string{"4", "5"}, ids(Filter(log, "alice", 2)))

	// limit at or beyond the visible count returns everything
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter(log, "carol", 3)))
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter(log, "carol", 100)))

	// non-positive means no limit
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter(log, "carol", -1)))
}

func TestFilterEmptyLog(t *testing.T) {
	assert.Empty(t, Filter(nil, "alice", 0))
	assert.Empty(t, Filter([]models.Message{}, "alice", 5))
}
