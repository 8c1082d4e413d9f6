// Package chat holds the presence-expiry and message-visibility core:
// participant lifecycle (join/heartbeat/evict), the message write path with
// ownership-gated mutation, and the visibility filter. Transport and
// persistence are collaborators; the core only sees the storage port.
package chat

import (
	"errors"
	"sync"
	"time"

	"chatroom/pkg/logger"
	"chatroom/pkg/models"
	"chatroom/pkg/sanitize"
	"chatroom/pkg/store"
	"chatroom/pkg/validation"
)

// timeLayout is the human-readable stamp written into messages. Ordering
// guarantees come from the store's insertion order, never from this field.
const timeLayout = "15:04:05"

// Store is the storage port injected into the core. Lookups must return
// an error matching store.ErrNotFound for absent keys.
type Store interface {
	PutParticipant(models.Participant) error
	GetParticipant(name string) (models.Participant, error)
	DeleteParticipant(name string) error
	ListParticipants() ([]models.Participant, error)
	AppendMessage(models.Message) (models.Message, error)
	ListMessages() ([]models.Message, error)
	GetMessage(id string) (models.Message, error)
	UpdateMessage(id string, m models.Message) error
	DeleteMessage(id string) error
}

// Service implements the room's state machine over an injected store.
//
// All read-then-write sections (uniqueness check + insert, ownership check
// + mutate, staleness check + evict) run under mu: Pebble offers no
// server-side compare-and-swap, so the in-process lock is what makes the
// precondition and the write one atomic step.
type Service struct {
	mu  sync.Mutex
	st  Store
	now func() time.Time
}

func New(st Store) *Service {
	return &Service{st: st, now: time.Now}
}

// Join registers a new participant and announces it with a broadcast
// status message. The registry insert commits before the announcement: a
// participant with no join announcement is the tolerated partial-failure
// mode, never the reverse.
func (s *Service) Join(name string) (models.Participant, error) {
	clean := sanitize.Clean(name)
	if err := validation.ValidateName(clean); err != nil {
		return models.Participant{}, validationError("%s", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.st.GetParticipant(clean)
	switch {
	case err == nil:
		return models.Participant{}, conflictError("participant %q already exists", clean)
	case !errors.Is(err, store.ErrNotFound):
		return models.Participant{}, storageError("participant lookup", err)
	}

	now := s.now()
	p := models.Participant{Name: clean, LastHeartbeat: now.UnixNano()}
	if err := s.st.PutParticipant(p); err != nil {
		return models.Participant{}, storageError("participant insert", err)
	}
	if _, err := s.st.AppendMessage(models.Message{
		From: clean,
		To:   models.Broadcast,
		Text: "joined",
		Type: models.TypeStatus,
		Time: now.Format(timeLayout),
	}); err != nil {
		logger.Error("join_announcement_failed", "name", clean, "error", err)
		return models.Participant{}, storageError("join announcement", err)
	}
	logger.Info("participant_joined", "name", clean)
	return p, nil
}

// Heartbeat refreshes a participant's staleness clock. Idempotent:
// repeated calls simply move the timestamp forward.
func (s *Service) Heartbeat(name string) error {
	clean := sanitize.Clean(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.st.GetParticipant(clean)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError("participant %q is not in the room", clean)
		}
		return storageError("participant lookup", err)
	}
	p.LastHeartbeat = s.now().UnixNano()
	if err := s.st.PutParticipant(p); err != nil {
		return storageError("heartbeat update", err)
	}
	return nil
}

// Participants returns the current active snapshot.
func (s *Service) Participants() ([]models.Participant, error) {
	ps, err := s.st.ListParticipants()
	if err != nil {
		return nil, storageError("participant list", err)
	}
	return ps, nil
}

// Exists reports whether name is currently in the registry.
func (s *Service) Exists(name string) (bool, error) {
	_, err := s.st.GetParticipant(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, storageError("participant lookup", err)
}

// PostMessage validates, sanitizes and appends a client message. The
// sender must be an active participant at write time.
func (s *Service) PostMessage(sender, to, text, typ string) (models.Message, error) {
	sender = sanitize.Clean(sender)
	to = sanitize.Clean(to)
	text = sanitize.Clean(text)
	typ = sanitize.Clean(typ)
	if err := validation.ValidateMessage(to, text, typ); err != nil {
		return models.Message{}, validationError("%s", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.exists(sender)
	if err != nil {
		return models.Message{}, err
	}
	if !active {
		return models.Message{}, inactiveSenderError(sender)
	}
	m, err := s.st.AppendMessage(models.Message{
		From: sender,
		To:   to,
		Text: text,
		Type: typ,
		Time: s.now().Format(timeLayout),
	})
	if err != nil {
		return models.Message{}, storageError("message append", err)
	}
	return m, nil
}

// EditMessage replaces the mutable fields (to, text, type) of the message
// stored under id. Only the original author may edit, and the update is
// keyed strictly by ID.
func (s *Service) EditMessage(requester, id, to, text, typ string) error {
	requester = sanitize.Clean(requester)
	to = sanitize.Clean(to)
	text = sanitize.Clean(text)
	typ = sanitize.Clean(typ)
	if err := validation.ValidateMessage(to, text, typ); err != nil {
		return validationError("%s", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.exists(requester)
	if err != nil {
		return err
	}
	if !active {
		return inactiveSenderError(requester)
	}
	m, err := s.st.GetMessage(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError("message %q not found", id)
		}
		return storageError("message lookup", err)
	}
	if m.From != requester {
		return authorizationError("message %q does not belong to %q", id, requester)
	}
	m.To, m.Text, m.Type = to, text, typ
	if err := s.st.UpdateMessage(id, m); err != nil {
		return storageError("message update", err)
	}
	logger.Info("message_edited", "id", id, "by", requester)
	return nil
}

// DeleteMessage removes the message stored under id. Only the original
// author may delete.
func (s *Service) DeleteMessage(requester, id string) error {
	requester = sanitize.Clean(requester)

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.st.GetMessage(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError("message %q not found", id)
		}
		return storageError("message lookup", err)
	}
	if m.From != requester {
		return authorizationError("message %q does not belong to %q", id, requester)
	}
	if err := s.st.DeleteMessage(id); err != nil {
		return storageError("message delete", err)
	}
	logger.Info("message_deleted", "id", id, "by", requester)
	return nil
}

// VisibleMessages returns the slice of the log the viewer may read, in
// insertion order. A positive limit keeps only the last limit entries of
// the filtered result.
func (s *Service) VisibleMessages(viewer string, limit int) ([]models.Message, error) {
	msgs, err := s.st.ListMessages()
	if err != nil {
		return nil, storageError("message list", err)
	}
	return Filter(msgs, sanitize.Clean(viewer), limit), nil
}

// EvictIfStale removes the named participant if its heartbeat is older
// than timeout, appending a broadcast "left" status message. The staleness
// check is re-run under the lock so a heartbeat racing the sweep wins.
// Returns whether an eviction happened.
func (s *Service) EvictIfStale(name string, timeout time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.st.GetParticipant(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// already gone, nothing to do
			return false, nil
		}
		return false, storageError("participant lookup", err)
	}
	now := s.now()
	if now.Sub(time.Unix(0, p.LastHeartbeat)) <= timeout {
		return false, nil
	}
	if err := s.st.DeleteParticipant(name); err != nil {
		return false, storageError("participant evict", err)
	}
	if _, err := s.st.AppendMessage(models.Message{
		From: name,
		To:   models.Broadcast,
		Text: "left",
		Type: models.TypeStatus,
		Time: now.Format(timeLayout),
	}); err != nil {
		// The eviction itself committed; the missing announcement is the
		// lesser failure and must not resurrect the participant.
		logger.Error("leave_announcement_failed", "name", name, "error", err)
		return true, storageError("leave announcement", err)
	}
	logger.Info("participant_evicted", "name", name)
	return true, nil
}

// exists is the under-lock variant of Exists.
func (s *Service) exists(name string) (bool, error) {
	_, err := s.st.GetParticipant(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, storageError("participant lookup", err)
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }
