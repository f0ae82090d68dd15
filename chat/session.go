package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"gulf-property-analyzer/retrieval"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = eris.New("chat: session not found")

// DefaultBudget applies when a client has not stated a budget.
var DefaultBudget = retrieval.BudgetRange{Min: 800_000, Max: 2_000_000}

// DefaultPreferredAreas applies when a client has not named any areas.
var DefaultPreferredAreas = []string{"Dubai Marina", "Downtown Dubai"}

// Preferences describe what a client is looking for.
type Preferences struct {
	BudgetRange     *retrieval.BudgetRange `json:"budget_range,omitempty"`
	PreferredAreas  []string               `json:"preferred_areas,omitempty"`
	ExperienceLevel ExperienceLevel        `json:"experience_level,omitempty"`
	RiskTolerance   string                 `json:"risk_tolerance,omitempty"`
}

// Budget returns the stated budget or DefaultBudget.
func (p Preferences) Budget() retrieval.BudgetRange {
	if p.BudgetRange != nil {
		return *p.BudgetRange
	}
	return DefaultBudget
}

// Areas returns the preferred areas or DefaultPreferredAreas.
func (p Preferences) Areas() []string {
	if len(p.PreferredAreas) > 0 {
		return p.PreferredAreas
	}
	return DefaultPreferredAreas
}

// Turn is one entry in a session's history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is one client conversation. Its history is an append-only log.
type Session struct {
	ID          string      `json:"session_id"`
	ClientID    string      `json:"client_id"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`

	// mu serialises message handling so turns are applied in arrival order.
	mu      sync.Mutex
	histMu  sync.RWMutex
	history []Turn
}

func (s *Session) append(role, content string, at time.Time) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.history = append(s.history, Turn{Role: role, Content: content, Timestamp: at})
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Turn {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// SessionStore holds live sessions keyed by ID. Sessions are independent and
// may be used concurrently.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session for a client.
func (st *SessionStore) Create(clientID string, prefs Preferences) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Preferences: prefs,
		CreatedAt:   st.now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, eris.Wrapf(ErrSessionNotFound, "session %q", id)
	}
	return s, nil
}

// Append adds a turn to a session's history.
func (st *SessionStore) Append(id, role, content string) error {
	s, err := st.Get(id)
	if err != nil {
		return err
	}
	s.append(role, content, st.now())
	return nil
}

// List returns all sessions ordered by creation time.
func (st *SessionStore) List() []*Session {
	st.mu.RLock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	st.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
