package session

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ragchat/internal/storage"
)

// DefaultSessionName is given to the session created on first run or
// during migration from a legacy flat history file.
const DefaultSessionName = "Main conversation"

var (
	// ErrLastSession is returned when deleting the only remaining session.
	ErrLastSession = errors.New("at least one conversation must remain")
	// ErrUnknownSession is returned when a session id does not resolve.
	ErrUnknownSession = errors.New("unknown session")
)

// Store owns the session registry and persists it after every mutation.
// It is not safe for concurrent use; the application is single-threaded
// and this is the only writer of the registry file.
type Store struct {
	path       string
	legacyPath string
	log        *zap.Logger
	reg        *Registry
}

// Open loads the registry from path. If the file is absent or corrupt, the
// legacy flat history at legacyPath (default empty) is migrated into a
// single session and persisted immediately. A registry with zero sessions
// is healed with a fresh default session.
func Open(path, legacyPath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{path: path, legacyPath: legacyPath, log: log}

	reg := &Registry{}
	err := storage.LoadJSON(path, reg)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrCorrupt):
		if errors.Is(err, storage.ErrCorrupt) {
			log.Warn("session registry unreadable, starting over", zap.String("path", path), zap.Error(err))
		}
		reg = s.migrateLegacy()
		s.reg = reg
		if err := s.save(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	s.reg = reg

	if len(reg.Sessions) == 0 {
		log.Warn("session registry has no sessions, creating default", zap.String("path", path))
		reg.Sessions = []*Session{newSession("session-1", DefaultSessionName)}
		reg.CurrentID = "session-1"
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	if _, ok := s.find(reg.CurrentID); !ok {
		reg.CurrentID = reg.Sessions[0].ID
	}
	return s, nil
}

// migrateLegacy wraps the old single-history file (a bare message list)
// into a one-session registry. A missing or corrupt legacy file yields an
// empty history.
func (s *Store) migrateLegacy() *Registry {
	var history []Message
	if s.legacyPath != "" {
		err := storage.LoadJSON(s.legacyPath, &history)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("legacy history unreadable, migrating empty", zap.String("path", s.legacyPath), zap.Error(err))
			history = nil
		} else if err == nil {
			s.log.Info("migrated legacy history", zap.String("path", s.legacyPath), zap.Int("messages", len(history)))
		}
	}
	sess := newSession("session-1", DefaultSessionName)
	sess.History = history
	return &Registry{CurrentID: sess.ID, Sessions: []*Session{sess}}
}

func newSession(id, name string) *Session {
	ts := isoNow()
	return &Session{ID: id, Name: name, CreatedAt: ts, LastUsed: ts}
}

func (s *Store) save() error {
	return storage.SaveJSON(s.path, s.reg)
}

func (s *Store) find(id string) (*Session, bool) {
	for _, sess := range s.reg.Sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return nil, false
}

// Sessions returns all sessions in creation order.
func (s *Store) Sessions() []*Session { return s.reg.Sessions }

// Get resolves a session by id.
func (s *Store) Get(id string) (*Session, bool) { return s.find(id) }

// Current resolves the active session. If the persisted pointer is stale
// it falls back to the first session rather than failing.
func (s *Store) Current() *Session {
	if sess, ok := s.find(s.reg.CurrentID); ok {
		return sess
	}
	return s.reg.Sessions[0]
}

// Switch makes the session with the given id active and bumps its
// last-used timestamp.
func (s *Store) Switch(id string) error {
	sess, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	s.reg.CurrentID = id
	sess.LastUsed = isoNow()
	return s.save()
}

// nextID derives an id from the session count, bumping past ids still in
// use after deletions so ids stay unique within the registry.
func (s *Store) nextID() (string, int) {
	n := len(s.reg.Sessions) + 1
	for {
		id := fmt.Sprintf("session-%d", n)
		if _, taken := s.find(id); !taken {
			return id, n
		}
		n++
	}
}

// Create adds a new empty session and switches to it. An empty name gets
// the default "Conversation N".
func (s *Store) Create(name string) (*Session, error) {
	id, n := s.nextID()
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Conversation %d", n)
	}
	sess := newSession(id, name)
	s.reg.Sessions = append(s.reg.Sessions, sess)
	if err := s.Switch(sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}

// DeleteCurrent removes the active session and makes the first remaining
// session active. Deleting the last session is refused.
func (s *Store) DeleteCurrent() error {
	if len(s.reg.Sessions) <= 1 {
		return ErrLastSession
	}
	cur := s.Current().ID
	kept := s.reg.Sessions[:0]
	for _, sess := range s.reg.Sessions {
		if sess.ID != cur {
			kept = append(kept, sess)
		}
	}
	s.reg.Sessions = kept
	s.reg.CurrentID = kept[0].ID
	return s.save()
}

// Rename sets a session's display name. Empty or unchanged names are a
// silent no-op.
func (s *Store) Rename(id, name string) error {
	sess, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	name = strings.TrimSpace(name)
	if name == "" || name == sess.Name {
		return nil
	}
	sess.Name = name
	return s.save()
}

// Append adds a message to the current session's history, stamped "now".
func (s *Store) Append(role, content string) error {
	return s.AppendAt(role, content, "")
}

// AppendAt is Append with an explicit HH:MM display time.
func (s *Store) AppendAt(role, content, when string) error {
	if when == "" {
		when = nowTime()
	}
	sess := s.Current()
	sess.History = append(sess.History, Message{Role: role, Content: content, Time: when, Date: today()})
	sess.LastUsed = isoNow()
	return s.save()
}

// ClearHistory empties the current session's history.
func (s *Store) ClearHistory() error {
	s.Current().History = nil
	return s.save()
}

// DeleteLastExchange drops the trailing user/assistant pair from the
// current session. It assumes strict alternation and blindly removes the
// last two messages whatever their roles; histories shorter than two
// messages are left untouched.
func (s *Store) DeleteLastExchange() error {
	sess := s.Current()
	if len(sess.History) < 2 {
		return nil
	}
	sess.History = sess.History[:len(sess.History)-2]
	return s.save()
}

// PinLastAnswer flags the most recent assistant message in the current
// session. No-op when the history holds no assistant message.
func (s *Store) PinLastAnswer() error {
	sess := s.Current()
	for i := len(sess.History) - 1; i >= 0; i-- {
		if sess.History[i].Role == RoleAssistant {
			sess.History[i].Pinned = true
			break
		}
	}
	return s.save()
}

// Pinned returns the pinned assistant messages of the current session in
// history order.
func (s *Store) Pinned() []Message {
	var out []Message
	for _, m := range s.Current().History {
		if m.Pinned && m.Role == RoleAssistant {
			out = append(out, m)
		}
	}
	return out
}

// Import wraps an exported message list into a new session named
// "Imported conversation N" and switches to it.
func (s *Store) Import(history []Message) (*Session, error) {
	id, n := s.nextID()
	sess := newSession(id, fmt.Sprintf("Imported conversation %d", n))
	sess.History = history
	s.reg.Sessions = append(s.reg.Sessions, sess)
	if err := s.Switch(sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}
