package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/prodchat/chatctl/internal/backend"
	"github.com/prodchat/chatctl/internal/logging"
	"github.com/prodchat/chatctl/internal/monitoring"
	"github.com/prodchat/chatctl/internal/shared/types"
	"github.com/prodchat/chatctl/internal/store"
)

// Assistant-visible failure messages. These are part of observable
// behavior; the transcript carries them verbatim.
const (
	MsgConnectFailed = "Error: Failed to connect to server."
	MsgNoResponse    = "Error: No response from server."
	MsgRequestFailed = "Error: Request failed."
	MsgCreateFailed  = "Error: Could not start a new session."
)

// Service is the remote chat session service as the controller sees it.
type Service interface {
	CreateSession(ctx context.Context) (string, error)
	Chat(ctx context.Context, sessionID, message string) (*backend.ChatReply, error)
	History(ctx context.Context, sessionID string) ([]backend.HistoryEntry, error)
}

// State is the render snapshot consumed by the presentation layer.
type State struct {
	SessionID  string
	ProductID  string
	Messages   []types.Message
	Input      string
	IsSending  bool
	IsCreating bool
	IsStopping bool
}

// Controller is the session state machine.
type Controller struct {
	mu      sync.Mutex
	svc     Service
	store   store.Store
	log     *logging.Logger
	metrics *monitoring.Metrics

	onChange func(State)

	sessionID string
	productID string
	messages  []types.Message
	input     string
	restored  bool

	creating    bool
	sending     bool
	stopping    bool
	backfilling bool
}

// New creates a controller bound to a remote service and a snapshot store.
func New(svc Service, st store.Store, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.NewNop()
	}
	return &Controller{
		svc:   svc,
		store: st,
		log:   log.Named("controller"),
	}
}

// WithMetrics attaches a metrics collector.
func (c *Controller) WithMetrics(m *monitoring.Metrics) *Controller {
	c.metrics = m
	return c
}

// OnChange registers a state-change callback. The callback runs outside
// the controller lock; it must not be registered after operations begin.
func (c *Controller) OnChange(fn func(State)) {
	c.onChange = fn
}

// State returns a copy of the current render state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// SetInput replaces the input buffer.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	state := c.stateLocked()
	c.mu.Unlock()
	c.fire(state)
}

// EnterKey sends the current input buffer.
func (c *Controller) EnterKey() <-chan struct{} {
	c.mu.Lock()
	text := c.input
	c.mu.Unlock()
	return c.SendMessage(text)
}

// StartSession clears all local session state, purges the snapshot store,
// and requests a fresh session from the service. The clean slate is
// established synchronously; the returned channel closes when the create
// request resolves. No-op when a create is already in flight.
func (c *Controller) StartSession() <-chan struct{} {
	c.mu.Lock()
	if c.creating {
		c.mu.Unlock()
		return closedDone()
	}
	c.creating = true
	c.resetLocked()
	state := c.stateLocked()
	c.mu.Unlock()
	c.fire(state)

	done := make(chan struct{})
	go func() {
		defer close(done)
		id, err := c.svc.CreateSession(context.Background())

		c.mu.Lock()
		c.creating = false
		if err != nil {
			c.log.Warn("session creation failed", zap.Error(err))
			if c.metrics != nil {
				c.metrics.CreateFailures.Inc()
			}
			// Deliberate exception to "no session, empty transcript":
			// the failure itself is reported in the transcript.
			c.messages = append(c.messages, types.Message{Role: types.RoleAssistant, Message: MsgCreateFailed})
		} else {
			c.sessionID = id
			c.restored = false
			if c.metrics != nil {
				c.metrics.SessionsCreated.Inc()
				c.metrics.SessionActive.Set(1)
			}
			c.log.Info("session created", zap.String("session_id", id))
			c.persistLocked()
		}
		state := c.stateLocked()
		c.mu.Unlock()
		c.fire(state)
	}()
	return done
}

// StopSession forgets the current session locally: transcript, product
// context, and the persisted snapshot are discarded. No network request is
// issued. No-op when no session is active.
func (c *Controller) StopSession() {
	c.mu.Lock()
	if c.sessionID == "" || c.stopping {
		c.mu.Unlock()
		return
	}
	c.stopping = true
	c.resetLocked()
	c.stopping = false
	if c.metrics != nil {
		c.metrics.SessionsStopped.Inc()
		c.metrics.SessionActive.Set(0)
	}
	state := c.stateLocked()
	c.mu.Unlock()

	c.log.Info("session stopped")
	c.fire(state)
}

// SendMessage appends the trimmed text as a user message, clears the input
// buffer, and dispatches a chat exchange. The user message stays in the
// transcript regardless of the request outcome. No-op on empty text, no
// active session, or an exchange already in flight.
func (c *Controller) SendMessage(text string) <-chan struct{} {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	if trimmed == "" || c.sessionID == "" || c.sending || c.stopping {
		c.mu.Unlock()
		return closedDone()
	}
	c.sending = true
	c.input = ""
	c.messages = append(c.messages, types.Message{Role: types.RoleUser, Message: trimmed})
	c.persistLocked()
	tag := c.sessionID
	state := c.stateLocked()
	c.mu.Unlock()
	c.fire(state)

	if c.metrics != nil {
		c.metrics.MessagesSent.Inc()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		reply, err := c.svc.Chat(context.Background(), tag, trimmed)

		c.mu.Lock()
		c.sending = false
		if tag != c.sessionID {
			// The session changed while the request was in flight; this
			// reply belongs to a transcript that no longer exists.
			c.log.Debug("discarding chat reply for stale session", zap.String("session_id", tag))
			state := c.stateLocked()
			c.mu.Unlock()
			c.fire(state)
			return
		}

		c.messages = append(c.messages, types.Message{
			Role:    types.RoleAssistant,
			Message: c.replyText(reply, err),
		})
		c.persistLocked()
		state := c.stateLocked()
		c.mu.Unlock()
		c.fire(state)
	}()
	return done
}

// RestoreFromStorage adopts a previously persisted session, if any. Called
// once at startup, before any other operation.
func (c *Controller) RestoreFromStorage() {
	c.mu.Lock()
	snap, err := c.store.Load()
	if err != nil {
		c.log.Warn("snapshot load failed", zap.Error(err))
		snap = nil
	}
	if snap == nil || snap.SessionID == "" {
		c.restored = false
		c.mu.Unlock()
		return
	}

	c.sessionID = snap.SessionID
	c.productID = snap.ProductID
	c.messages = append([]types.Message(nil), snap.Messages...)
	c.restored = true
	if c.metrics != nil {
		c.metrics.SessionsRestored.Inc()
		c.metrics.SessionActive.Set(1)
	}
	c.log.Info("session restored from storage",
		zap.String("session_id", snap.SessionID),
		zap.Int("messages", len(snap.Messages)),
	)
	state := c.stateLocked()
	c.mu.Unlock()
	c.fire(state)
}

// ReconcileHistory backfills the transcript from the remote history
// endpoint. Runs only for a session that was restored from storage with no
// locally cached messages; any failure leaves the transcript untouched.
func (c *Controller) ReconcileHistory() <-chan struct{} {
	c.mu.Lock()
	if !c.restored || c.sessionID == "" || len(c.messages) != 0 || c.backfilling {
		c.mu.Unlock()
		return closedDone()
	}
	c.backfilling = true
	tag := c.sessionID
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		entries, err := c.svc.History(context.Background(), tag)

		c.mu.Lock()
		c.backfilling = false
		if err != nil || tag != c.sessionID {
			// Best-effort backfill: failures are silent.
			c.log.Debug("history backfill skipped", zap.Error(err))
			c.mu.Unlock()
			return
		}

		msgs := make([]types.Message, 0, len(entries))
		for _, e := range entries {
			msgs = append(msgs, types.Message{Role: types.Role(e.Role), Message: e.Message})
		}
		c.messages = msgs
		if c.metrics != nil {
			c.metrics.HistoryBackfills.Inc()
		}
		c.persistLocked()
		state := c.stateLocked()
		c.mu.Unlock()
		c.fire(state)
	}()
	return done
}

// replyText maps a chat resolution to the assistant-visible message text.
func (c *Controller) replyText(reply *backend.ChatReply, err error) string {
	if err != nil {
		var serverErr *backend.ServerError
		if errors.As(err, &serverErr) {
			if c.metrics != nil {
				c.metrics.ChatFailures.WithLabelValues(monitoring.FailureServer).Inc()
			}
			c.log.Warn("chat exchange rejected", zap.Int("status", serverErr.StatusCode), zap.String("detail", serverErr.Detail))
			if serverErr.Detail != "" {
				return serverErr.Detail
			}
			return MsgRequestFailed
		}
		if c.metrics != nil {
			c.metrics.ChatFailures.WithLabelValues(monitoring.FailureTransport).Inc()
		}
		c.log.Warn("chat exchange failed", zap.Error(err))
		return MsgConnectFailed
	}

	if reply.ProductID != "" {
		// Product context is sticky: only a session reset clears it.
		c.productID = reply.ProductID
	}
	if reply.BotMessage == "" {
		return MsgNoResponse
	}
	return reply.BotMessage
}

// resetLocked clears session identity, transcript, product context, and
// the persisted snapshot in one step.
func (c *Controller) resetLocked() {
	c.sessionID = ""
	c.productID = ""
	c.messages = nil
	c.input = ""
	c.restored = false
	if err := c.store.Clear(); err != nil {
		c.log.Warn("snapshot clear failed", zap.Error(err))
	}
}

// persistLocked writes the current session through to the store. Never
// called without an active session; storage failures are non-fatal.
func (c *Controller) persistLocked() {
	if c.sessionID == "" {
		return
	}
	snap := &types.Snapshot{
		SessionID: c.sessionID,
		ProductID: c.productID,
		Messages:  append([]types.Message{}, c.messages...),
	}
	if err := c.store.Save(snap); err != nil {
		c.log.Warn("snapshot save failed", zap.Error(err))
	}
}

func (c *Controller) stateLocked() State {
	return State{
		SessionID:  c.sessionID,
		ProductID:  c.productID,
		Messages:   append([]types.Message(nil), c.messages...),
		Input:      c.input,
		IsSending:  c.sending,
		IsCreating: c.creating,
		IsStopping: c.stopping,
	}
}

func (c *Controller) fire(state State) {
	if c.onChange != nil {
		c.onChange(state)
	}
}

func closedDone() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
