package domain

// Speaker roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single entry in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the durable per-session state: the collected profile plus the
// conversation transcript. It is loaded, mutated, and saved within a single
// request; concurrent turns for one session are not a supported scenario.
type Session struct {
	Fields   Profile `json:"fields"`
	Messages []Turn  `json:"messages"`
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{Fields: NewProfile()}
}

// LastAssistantTurn returns the most recent assistant message, or "" when
// none exists.
func (s *Session) LastAssistantTurn() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

// Append adds a turn to the transcript.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, Turn{Role: role, Content: content})
}

// TruncateHistory drops the oldest turns so at most limit remain. The
// profile is never truncated, only the transcript.
func (s *Session) TruncateHistory(limit int) {
	if limit <= 0 || len(s.Messages) <= limit {
		return
	}
	s.Messages = s.Messages[len(s.Messages)-limit:]
}

// Clone deep-copies the session so a failed turn can leave the stored state
// byte-for-byte unchanged.
func (s *Session) Clone() *Session {
	msgs := make([]Turn, len(s.Messages))
	copy(msgs, s.Messages)
	return &Session{Fields: s.Fields.Clone(), Messages: msgs}
}
