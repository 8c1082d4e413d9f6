package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"chatroom/pkg/logger"
	"chatroom/pkg/models"
	"chatroom/pkg/utils"
)

// ErrNotFound is returned when a participant or message key is absent.
var ErrNotFound = pebble.ErrNotFound

// Key layout:
//
//	participant:<name>            participant JSON, keyed by unique name
//	msg:<unixnano %020d>-<%06d>   message JSON; keys sort in insertion order
//	msgid:<id>                    message log key, for by-ID lookup
const (
	participantPrefix = "participant:"
	msgPrefix         = "msg:"
	msgIDPrefix       = "msgid:"
)

// Store is a Pebble-backed adapter holding the two logical collections:
// participants (keyed by name) and the append-ordered message log.
type Store struct {
	db   *pebble.DB
	path string

	// seq reduces key collisions when multiple messages share the same
	// nanosecond timestamp.
	seq uint64
}

// Open opens (or creates) a Pebble database at the given path.
func Open(path string) (*Store, error) {
	logger.Info("opening_pebble_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	s.db = nil
	logger.Info("pebble_closed", "path", s.path)
	return nil
}

// Path returns the on-disk DB path.
func (s *Store) Path() string { return s.path }

// PutParticipant inserts or refreshes a participant record.
func (s *Store) PutParticipant(p models.Participant) error {
	key := []byte(participantPrefix + p.Name)
	_, closer, err := s.db.Get(key)
	isNew := err == pebble.ErrNotFound
	if err != nil && err != pebble.ErrNotFound {
		return err
	}
	if closer != nil {
		_ = closer.Close()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal participant: %w", err)
	}
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		logger.Error("save_participant_failed", "name", p.Name, "error", err)
		return err
	}
	if isNew {
		ParticipantsActive.Inc()
	}
	return nil
}

// GetParticipant returns the participant stored under name, or ErrNotFound.
func (s *Store) GetParticipant(name string) (models.Participant, error) {
	var p models.Participant
	v, closer, err := s.db.Get([]byte(participantPrefix + name))
	if err != nil {
		return p, err
	}
	defer closer.Close()
	if err := json.Unmarshal(v, &p); err != nil {
		return p, fmt.Errorf("invalid participant JSON: %w", err)
	}
	return p, nil
}

// DeleteParticipant removes a participant record. Returns ErrNotFound if
// no such participant exists.
func (s *Store) DeleteParticipant(name string) error {
	key := []byte(participantPrefix + name)
	_, closer, err := s.db.Get(key)
	if err != nil {
		return err
	}
	_ = closer.Close()
	if err := s.db.Delete(key, pebble.Sync); err != nil {
		logger.Error("delete_participant_failed", "name", name, "error", err)
		return err
	}
	ParticipantsActive.Dec()
	return nil
}

// ListParticipants returns all participants, ordered by name.
func (s *Store) ListParticipants() ([]models.Participant, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	prefix := []byte(participantPrefix)
	var out []models.Participant
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var p models.Participant
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			return nil, fmt.Errorf("invalid participant JSON at %s: %w", iter.Key(), err)
		}
		out = append(out, p)
	}
	return out, iter.Error()
}

// AppendMessage appends a message to the log, assigning an ID when the
// caller left it empty, and indexes it by ID. Insertion order comes from
// the sortable key.
func (s *Store) AppendMessage(m models.Message) (models.Message, error) {
	if m.ID == "" {
		m.ID = utils.GenID()
	}
	ts := time.Now().UTC().UnixNano()
	n := atomic.AddUint64(&s.seq, 1)
	key := fmt.Sprintf(msgPrefix+"%020d-%06d", ts, n)

	data, err := json.Marshal(m)
	if err != nil {
		return m, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("save_message_failed", "key", key, "error", err)
		return m, err
	}
	if err := s.db.Set([]byte(msgIDPrefix+m.ID), []byte(key), pebble.Sync); err != nil {
		logger.Error("save_message_index_failed", "id", m.ID, "error", err)
		return m, err
	}
	MessagesAppended.Inc()
	logger.Debug("message_saved", "key", key, "id", m.ID, "type", m.Type)
	return m, nil
}

// ListMessages returns the full message log in insertion order.
func (s *Store) ListMessages() ([]models.Message, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	prefix := []byte(msgPrefix)
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return nil, fmt.Errorf("invalid message JSON at %s: %w", iter.Key(), err)
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// GetMessage returns the message stored under id, or ErrNotFound.
func (s *Store) GetMessage(id string) (models.Message, error) {
	var m models.Message
	key, err := s.logKey(id)
	if err != nil {
		return m, err
	}
	v, closer, err := s.db.Get(key)
	if err != nil {
		return m, err
	}
	defer closer.Close()
	if err := json.Unmarshal(v, &m); err != nil {
		return m, fmt.Errorf("invalid message JSON: %w", err)
	}
	return m, nil
}

// UpdateMessage overwrites the message stored under id in place, keeping
// its position in the log. The update is keyed strictly by ID.
func (s *Store) UpdateMessage(id string, m models.Message) error {
	key, err := s.logKey(id)
	if err != nil {
		return err
	}
	m.ID = id
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		logger.Error("update_message_failed", "id", id, "error", err)
		return err
	}
	return nil
}

// DeleteMessage removes the message stored under id and its index entry.
func (s *Store) DeleteMessage(id string) error {
	key, err := s.logKey(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(key, pebble.Sync); err != nil {
		logger.Error("delete_message_failed", "id", id, "error", err)
		return err
	}
	return s.db.Delete([]byte(msgIDPrefix+id), pebble.Sync)
}

// logKey resolves a message ID to its log key via the msgid index.
func (s *Store) logKey(id string) ([]byte, error) {
	v, closer, err := s.db.Get([]byte(msgIDPrefix + id))
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

// PurgeStatusBefore deletes status-type messages older than cutoff
// (unix nanos), up to batchSize per call (0 means unbounded). The message
// age comes from the log key's timestamp prefix, so the scan can stop at
// the first key at or past the cutoff. Returns the number of messages
// purged (or that would be purged when dryRun is set).
func (s *Store) PurgeStatusBefore(cutoff int64, batchSize int, dryRun bool) (int, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	prefix := []byte(msgPrefix)
	purged := 0
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		ts, ok := keyTimestamp(iter.Key())
		if !ok || ts >= cutoff {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Warn("purge_skip_invalid_message", "key", string(iter.Key()), "error", err)
			continue
		}
		if m.Type != models.TypeStatus {
			continue
		}
		if !dryRun {
			k := append([]byte(nil), iter.Key()...)
			if err := s.db.Delete(k, pebble.Sync); err != nil {
				return purged, err
			}
			if err := s.db.Delete([]byte(msgIDPrefix+m.ID), pebble.Sync); err != nil {
				return purged, err
			}
		}
		purged++
		if batchSize > 0 && purged >= batchSize {
			break
		}
	}
	return purged, iter.Error()
}

// keyTimestamp extracts the unix-nano timestamp from a msg log key.
func keyTimestamp(key []byte) (int64, bool) {
	k := string(key)
	if len(k) < len(msgPrefix)+20 {
		return 0, false
	}
	ts, err := strconv.ParseInt(k[len(msgPrefix):len(msgPrefix)+20], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// ListKeys returns all keys (as strings) that start with the given prefix.
// If prefix is empty it returns all keys in the DB.
func (s *Store) ListKeys(prefix string) ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if len(prefix) > 0 && !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(iter.Key()))
	}
	return out, iter.Error()
}

// GetKey returns the raw value stored under key.
func (s *Store) GetKey(key string) (string, error) {
	v, closer, err := s.db.Get([]byte(key))
	if err != nil {
		return "", err
	}
	defer closer.Close()
	return string(v), nil
}
