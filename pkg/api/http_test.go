package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatroom/pkg/api"
	"chatroom/pkg/chat"
	"chatroom/pkg/models"
	"chatroom/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	srv := httptest.NewServer(api.Handler(chat.New(st)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, user string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set("User", user)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func join(t *testing.T, srv *httptest.Server, name string) {
	t.Helper()
	res := doJSON(t, http.MethodPost, srv.URL+"/participants", "", map[string]string{"name": name})
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)
}

func listMessages(t *testing.T, srv *httptest.Server, user, query string) []models.Message {
	t.Helper()
	res := doJSON(t, http.MethodGet, srv.URL+"/messages"+query, user, nil)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var out []models.Message
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestJoinThenDuplicate(t *testing.T) {
	srv := newTestServer(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/participants", "", map[string]string{"name": " alice "})
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, "alice", created["name"])

	res = doJSON(t, http.MethodPost, srv.URL+"/participants", "", map[string]string{"name": "alice"})
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestJoinRejectsBadPayloads(t *testing.T) {
	srv := newTestServer(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/participants", "", map[string]string{"name": "   "})
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/participants", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, raw.StatusCode)
}

func TestListParticipants(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "alice")
	join(t, srv, "bob")

	res := doJSON(t, http.MethodGet, srv.URL+"/participants", "", nil)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var ps []models.Participant
	require.NoError(t, json.NewDecoder(res.Body).Decode(&ps))
	require.Len(t, ps, 2)
	assert.Equal(t, "alice", ps[0].Name)
	assert.NotZero(t, ps[0].LastHeartbeat)
}

func TestPublicMessageVisibleToAnyone(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "bob")

	res := doJSON(t, http.MethodPost, srv.URL+"/messages", "bob",
		map[string]string{"to": models.Broadcast, "text": "hi", "type": models.TypePublic})
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var m models.Message
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "bob", m.From)

	msgs := listMessages(t, srv, "anyone", "")
	// join announcement + the post
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[1].Text)
}

func TestPrivateMessageVisibility(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "bob")
	join(t, srv, "alice")

	res := doJSON(t, http.MethodPost, srv.URL+"/messages", "bob",
		map[string]string{"to": "alice", "text": "secret", "type": models.TypePrivate})
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	hasSecret := func(msgs []models.Message) bool {
		for _, m := range msgs {
			if m.Text == "secret" {
				return true
			}
		}
		return false
	}
	assert.False(t, hasSecret(listMessages(t, srv, "carol", "")))
	assert.True(t, hasSecret(listMessages(t, srv, "alice", "")))
	assert.True(t, hasSecret(listMessages(t, srv, "bob", "")))
}

func TestMessageLimit(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "bob")
	for _, txt := range []string{"one", "two", "three"} {
		res := doJSON(t, http.MethodPost, srv.URL+"/messages", "bob",
			map[string]string{"to": models.Broadcast, "text": txt, "type": models.TypePublic})
		res.Body.Close()
	}

	msgs := listMessages(t, srv, "anyone", "?limit=2")
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Text)
	assert.Equal(t, "three", msgs[1].Text)

	// larger than available returns everything (join announcement + 3)
	assert.Len(t, listMessages(t, srv, "anyone", "?limit=100"), 4)
	// unparseable limit means no limit
	assert.Len(t, listMessages(t, srv, "anyone", "?limit=abc"), 4)
	assert.Len(t, listMessages(t, srv, "anyone", "?limit=-1"), 4)
}

func TestPostMessageRejections(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "bob")

	// sender not in the room
	res := doJSON(t, http.MethodPost, srv.URL+"/messages", "ghost",
		map[string]string{"to": models.Broadcast, "text": "boo", "type": models.TypePublic})
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	// bad type
	res = doJSON(t, http.MethodPost, srv.URL+"/messages", "bob",
		map[string]string{"to": models.Broadcast, "text": "hi", "type": "shout"})
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestEditMessage(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "bob")
	join(t, srv, "eve")

	res := doJSON(t, http.MethodPost, srv.URL+"/messages", "bob",
		map[string]string{"to": models.Broadcast, "text": "hi", "type": models.TypePublic})
	var m models.Message
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	res.Body.Close()

	// only the author may edit
	res = doJSON(t, http.MethodPut, srv.URL+"/messages/"+m.ID, "eve",
		map[string]string{"to": models.Broadcast, "text": "hacked", "type": models.TypePublic})
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = doJSON(t, http.MethodPut, srv.URL+"/messages/"+m.ID, "bob",
		map[string]string{"to": models.Broadcast, "text": "edited", "type": models.TypePublic})
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	msgs := listMessages(t, srv, "anyone", "?limit=1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "edited", msgs[0].Text)

	// unknown id
	res = doJSON(t, http.MethodPut, srv.URL+"/messages/msg-nope", "bob",
		map[string]string{"to": models.Broadcast, "text": "x", "type": models.TypePublic})
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDeleteMessageOwnership(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "frank")

	res := doJSON(t, http.MethodPost, srv.URL+"/messages", "frank",
		map[string]string{"to": models.Broadcast, "text": "mine", "type": models.TypePublic})
	var m models.Message
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	res.Body.Close()

	res = doJSON(t, http.MethodDelete, srv.URL+"/messages/"+m.ID, "eve", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	msgs := listMessages(t, srv, "anyone", "?limit=1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "mine", msgs[0].Text)

	res = doJSON(t, http.MethodDelete, srv.URL+"/messages/"+m.ID, "frank", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = doJSON(t, http.MethodDelete, srv.URL+"/messages/"+m.ID, "frank", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestStatusHeartbeat(t *testing.T) {
	srv := newTestServer(t)
	join(t, srv, "alice")

	res := doJSON(t, http.MethodPost, srv.URL+"/status", "alice", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = doJSON(t, http.MethodPost, srv.URL+"/status", "ghost", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
