// Package store persists the board locally and propagates snapshots to other instances.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/evanschultz/kanwow/internal/domain"
)

// Message types carried on the broadcast channel.
const (
	MessageTypeBoardUpdate = "board:update"
	// MessageTypeLegacyUpdate is accepted on receive only.
	MessageTypeLegacyUpdate = "update"
)

// DefaultKey is the storage key of the board document.
const DefaultKey = "kanban-wow.v1"

// Message is the broadcast envelope.
type Message struct {
	Type   string          `json:"type"`
	Board  json.RawMessage `json:"board"`
	Origin string          `json:"origin,omitempty"`
}

// Options configures a Store.
type Options struct {
	Key          string
	Origin       string
	DefaultBoard domain.Board
	Logger       Logger
}

// Store owns persistence and cross-instance propagation of board snapshots.
type Store struct {
	kv       KV
	bus      Broadcaster
	key      string
	origin   string
	defaults domain.Board
	logger   Logger

	mu            sync.Mutex
	handlers      map[int]func(domain.Board)
	nextHandlerID int
	cancelSub     func()
	lastWritten   []byte
}

// New constructs a store. A nil bus disables propagation.
func New(kv KV, bus Broadcaster, opts Options) *Store {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = DefaultKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	defaults := opts.DefaultBoard.Clone()
	defaults.Normalize()
	return &Store{
		kv:       kv,
		bus:      bus,
		key:      key,
		origin:   opts.Origin,
		defaults: defaults,
		logger:   logger,
		handlers: map[int]func(domain.Board){},
	}
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// DefaultBoard returns a fresh copy of the fallback board.
func (s *Store) DefaultBoard() domain.Board {
	return s.defaults.Clone()
}

// Load reads the persisted board. Missing or unreadable data yields the default board.
func (s *Store) Load(ctx context.Context) domain.Board {
	if s.kv == nil {
		return s.DefaultBoard()
	}
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("board read failed, using default board", "key", s.key, "err", err)
		return s.DefaultBoard()
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		s.logger.Debug("no stored board, using default board", "key", s.key)
		return s.DefaultBoard()
	}
	b, err := Decode(data)
	if err != nil {
		s.logger.Warn("stored board unreadable, using default board", "key", s.key, "err", err)
		return s.DefaultBoard()
	}
	s.mu.Lock()
	s.lastWritten = append([]byte(nil), data...)
	s.mu.Unlock()
	s.logger.Debug("loaded stored board", "key", s.key, "columns", len(b.Columns), "tasks", len(b.Tasks))
	return b
}

// Save persists b and publishes it to other instances. Failures are logged, never returned.
func (s *Store) Save(ctx context.Context, b domain.Board) {
	data, err := Encode(b)
	if err != nil {
		s.logger.Error("board encode failed", "err", err)
		return
	}
	s.write(ctx, data)
	s.publish(ctx, data)
}

// Persist writes b without publishing and skips the write when nothing changed since the last
// write. It reports whether a write happened.
func (s *Store) Persist(ctx context.Context, b domain.Board) bool {
	data, err := Encode(b)
	if err != nil {
		s.logger.Error("board encode failed", "err", err)
		return false
	}
	s.mu.Lock()
	unchanged := bytes.Equal(data, s.lastWritten)
	s.mu.Unlock()
	if unchanged {
		return false
	}
	return s.write(ctx, data)
}

// OnExternalUpdate registers cb for snapshots published by other instances. The returned func
// removes it.
func (s *Store) OnExternalUpdate(cb func(domain.Board)) func() {
	if cb == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextHandlerID
	s.nextHandlerID++
	s.handlers[id] = cb
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// Start subscribes to the broadcast port. It is a no-op without a bus or when already started.
func (s *Store) Start(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	s.mu.Lock()
	started := s.cancelSub != nil
	s.mu.Unlock()
	if started {
		return nil
	}
	cancel, err := s.bus.Subscribe(ctx, s.receive)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cancelSub = cancel
	s.mu.Unlock()
	return nil
}

// Close stops receiving external updates.
func (s *Store) Close() {
	s.mu.Lock()
	cancel := s.cancelSub
	s.cancelSub = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Store) write(ctx context.Context, data []byte) bool {
	if s.kv == nil {
		return false
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		s.logger.Error("board write failed", "key", s.key, "err", err)
		return false
	}
	s.mu.Lock()
	s.lastWritten = append(s.lastWritten[:0], data...)
	s.mu.Unlock()
	return true
}

func (s *Store) publish(ctx context.Context, data []byte) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(Message{
		Type:   MessageTypeBoardUpdate,
		Board:  data,
		Origin: s.origin,
	})
	if err != nil {
		s.logger.Error("broadcast encode failed", "err", err)
		return
	}
	if err := s.bus.Publish(ctx, payload); err != nil {
		s.logger.Warn("board broadcast failed", "err", err)
	}
}

func (s *Store) receive(payload []byte) {
	b, err := s.decodeMessage(payload)
	if err != nil {
		if !errors.Is(err, errOwnMessage) {
			s.logger.Warn("ignoring broadcast message", "err", err)
		}
		return
	}
	s.mu.Lock()
	handlers := make([]func(domain.Board), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, h := range handlers {
		h(b.Clone())
	}
}

var errOwnMessage = errors.New("own message")

func (s *Store) decodeMessage(payload []byte) (domain.Board, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.Board{}, err
	}
	switch msg.Type {
	case MessageTypeBoardUpdate, MessageTypeLegacyUpdate:
	default:
		return domain.Board{}, errors.New("unknown message type " + msg.Type)
	}
	if s.origin != "" && msg.Origin == s.origin {
		return domain.Board{}, errOwnMessage
	}
	return Decode(msg.Board)
}
