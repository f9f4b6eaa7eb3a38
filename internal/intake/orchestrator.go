package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fafsabuddy/server/internal/domain"
	"github.com/fafsabuddy/server/internal/llm"
	"github.com/fafsabuddy/server/internal/schema"
	"github.com/fafsabuddy/server/internal/store"
)

// Defaults applied when the corresponding option is zero.
const (
	DefaultProfileTTL   = 7 * 24 * time.Hour
	DefaultHistoryLimit = 40
)

// TurnResult is the outcome of one submitted turn.
type TurnResult struct {
	Reply    string        `json:"reply"`
	Progress float64       `json:"progress"`
	Done     bool          `json:"done"`
	Restore  bool          `json:"restore,omitempty"`
	Messages []domain.Turn `json:"messages,omitempty"` // populated only on restore
}

// Snapshot is a read-only view of a session for display and
// checklist-building consumers.
type Snapshot struct {
	Fields       domain.Profile `json:"fields"`
	Progress     float64        `json:"progress"`
	MessageCount int            `json:"message_count"`
}

// Orchestrator runs the collection state machine: load session, consult the
// selector, invoke the model, validate and merge updates, normalize,
// recompute progress, persist. It holds no per-session state; everything is
// load-merge-save against the injected store, last writer wins.
type Orchestrator struct {
	store        store.Store
	model        llm.Completer
	turnLog      TurnLogger
	ttl          time.Duration
	historyLimit int
}

// NewOrchestrator wires the orchestrator. A nil turn logger becomes a
// no-op; zero ttl/historyLimit take the defaults.
func NewOrchestrator(st store.Store, model llm.Completer, turnLog TurnLogger, ttl time.Duration, historyLimit int) *Orchestrator {
	if turnLog == nil {
		turnLog = NoopTurnLogger{}
	}
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Orchestrator{
		store:        st,
		model:        model,
		turnLog:      turnLog,
		ttl:          ttl,
		historyLimit: historyLimit,
	}
}

// SubmitTurn processes one inbound message for the session. An empty
// message triggers boot/restore semantics. A model failure returns an error
// with the stored session untouched; the caller may simply resend.
func (o *Orchestrator) SubmitTurn(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	session, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return o.bootOrRestore(ctx, sessionID, session)
	}

	if domain.ContainsSensitiveText(message) {
		return o.safetyTurn(ctx, sessionID, session, message)
	}

	// Mutate a clone so a failed model call leaves the stored session
	// byte-for-byte unchanged.
	next := session.Clone()
	next.Append(domain.RoleUser, message)

	directive := BuildDirective(next.Fields)
	result, err := o.model.Complete(ctx, systemPrompt, directive, next.Messages)
	if err != nil {
		return nil, fmt.Errorf("model turn: %w", err)
	}

	updates := schema.ValidateUpdates(result.Updates)
	mergeUpdates(next.Fields, updates)
	normalizeBankSentinel(next.Fields)

	next.Append(domain.RoleAssistant, result.Reply)

	progress := schema.Progress(next.Fields)
	done := result.Done
	if !done && progress >= 1 {
		done = true
	}
	if done {
		progress = 1
	}

	next.TruncateHistory(o.historyLimit)
	if err := o.store.Save(ctx, sessionID, next, o.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	o.logTurn(sessionID, domain.RoleUser, message, progress, done)
	o.logTurn(sessionID, domain.RoleAssistant, result.Reply, progress, done)

	return &TurnResult{Reply: result.Reply, Progress: progress, Done: done}, nil
}

// State returns a read-only snapshot of the session.
func (o *Orchestrator) State(ctx context.Context, sessionID string) (*Snapshot, error) {
	session, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Snapshot{
		Fields:       session.Fields,
		Progress:     schema.Progress(session.Fields),
		MessageCount: len(session.Messages),
	}, nil
}

// Reset clears the profile and history. The session identity itself is the
// caller's to rotate or keep.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	if err := o.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RegisterUpload records a document upload URL in the session's ledger.
func (o *Orchestrator) RegisterUpload(ctx context.Context, sessionID, itemID, url string) error {
	session, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	session.Fields.SetUpload(itemID, domain.Upload{URL: url, UploadedAt: time.Now().Unix()})
	if err := o.store.Save(ctx, sessionID, session, o.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// RemoveUpload drops a document from the session's ledger.
func (o *Orchestrator) RemoveUpload(ctx context.Context, sessionID, itemID string) error {
	session, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	session.Fields.RemoveUpload(itemID)
	if err := o.store.Save(ctx, sessionID, session, o.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// bootOrRestore handles the empty-message turn. A session with history is
// restored as-is (TTL refreshed, model untouched); a fresh session gets the
// welcome message as its first assistant turn.
func (o *Orchestrator) bootOrRestore(ctx context.Context, sessionID string, session *domain.Session) (*TurnResult, error) {
	if len(session.Messages) > 0 {
		if err := o.store.Save(ctx, sessionID, session, o.ttl); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return &TurnResult{
			Reply:    session.LastAssistantTurn(),
			Progress: schema.Progress(session.Fields),
			Restore:  true,
			Messages: session.Messages,
		}, nil
	}

	session.Append(domain.RoleAssistant, Welcome)
	if err := o.store.Save(ctx, sessionID, session, o.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	o.logTurn(sessionID, domain.RoleAssistant, Welcome, 0, false)
	return &TurnResult{Reply: Welcome, Progress: 0}, nil
}

// safetyTurn answers a message that mentions raw sensitive identifiers with
// the canned redirect. The model is never invoked and the profile is never
// mutated; only the transcript grows.
func (o *Orchestrator) safetyTurn(ctx context.Context, sessionID string, session *domain.Session, message string) (*TurnResult, error) {
	session.Append(domain.RoleUser, message)
	session.Append(domain.RoleAssistant, domain.SafetyReply)
	session.TruncateHistory(o.historyLimit)
	if err := o.store.Save(ctx, sessionID, session, o.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	progress := schema.Progress(session.Fields)
	o.logTurn(sessionID, domain.RoleUser, message, progress, false)
	o.logTurn(sessionID, domain.RoleAssistant, domain.SafetyReply, progress, false)
	return &TurnResult{Reply: domain.SafetyReply, Progress: progress}, nil
}

func (o *Orchestrator) logTurn(sessionID, role, content string, progress float64, done bool) {
	o.turnLog.Log(TurnEvent{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Progress:  progress,
		Done:      done,
	})
}

// mergeUpdates applies validated updates: scalars overwrite, schools union
// with the existing set (string equality, first-seen order kept).
func mergeUpdates(p domain.Profile, updates map[string]any) {
	for name, value := range updates {
		if name == schema.FieldSchools {
			p[schema.FieldSchools] = unionSchools(p.Schools(), value)
			continue
		}
		p[name] = value
	}
}

func unionSchools(existing []string, proposed any) []string {
	merged := make([]string, 0, len(existing))
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
	}
	if list, ok := proposed.([]string); ok {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			merged = append(merged, s)
		}
	}
	return merged
}

// normalizeBankSentinel runs after every merge, not just on turns that
// touched the bank field, so a previously inconsistent profile self-heals:
// once the student has no bank account, the checking/savings answers are
// forced false.
func normalizeBankSentinel(p domain.Profile) {
	if !p.Has(schema.FieldBankName) {
		return
	}
	if bank := p.String(schema.FieldBankName); bank == domain.BankNone || bank == "" {
		p[schema.FieldHasChecking] = false
		p[schema.FieldHasSavings] = false
	}
}
