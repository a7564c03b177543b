package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/runixer/evalboard/internal/evaluator"
	"github.com/runixer/evalboard/internal/i18n"
	"github.com/runixer/evalboard/internal/notify"
)

// ErrSuperseded is returned when a detail fetch finished after a newer
// selection replaced it. Its result is discarded.
var ErrSuperseded = errors.New("detail fetch superseded by a newer selection")

// DetailView holds the conversation shown in the detail modal.
type DetailView struct {
	client  evaluator.Client
	logger  *slog.Logger
	notices *notify.Queue
	t       i18n.Localizer

	mu           sync.Mutex
	id           string
	seq          uint64
	loading      bool
	failed       bool
	conversation *evaluator.Conversation
}

// DetailSnapshot is a copy of the detail state taken for one render.
type DetailSnapshot struct {
	ID           string
	Loading      bool
	Conversation *evaluator.Conversation
}

// NewDetailView creates an empty detail view. Failures are reported to notices.
func NewDetailView(client evaluator.Client, logger *slog.Logger, notices *notify.Queue, t i18n.Localizer) *DetailView {
	return &DetailView{
		client:  client,
		logger:  logger.With("component", "detail_view"),
		notices: notices,
		t:       t,
	}
}

// SetConversationID selects the conversation to show. An unchanged id is a
// no-op unless its last fetch failed; a new non-empty id triggers exactly one
// fetch. When several fetches overlap only the latest selection is applied
// and the others return ErrSuperseded. A failed fetch keeps the previous
// content.
func (d *DetailView) SetConversationID(ctx context.Context, id string) error {
	d.mu.Lock()
	if id == d.id && !d.failed {
		d.mu.Unlock()
		return nil
	}
	d.id = id
	d.seq++
	seq := d.seq
	d.failed = false
	if id == "" {
		d.loading = false
		d.mu.Unlock()
		return nil
	}
	d.loading = true
	d.mu.Unlock()

	conversation, err := d.client.GetConversation(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq {
		d.logger.Debug("Discarding superseded detail fetch", "conversation_id", id)
		return ErrSuperseded
	}
	d.loading = false

	if err != nil {
		d.failed = true
		d.logger.Warn("Failed to get conversation detail", "conversation_id", id, "error", err)
		d.notices.Push(notify.Error(d.t("notify.detail_failed")))
		return err
	}

	d.conversation = &conversation
	d.logger.Debug("Loaded conversation detail", "conversation_id", id, "records", len(conversation.Records))
	return nil
}

// Reset forgets the selection and any cached conversation. A fetch still in
// flight is discarded when it completes.
func (d *DetailView) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.id = ""
	d.seq++
	d.loading = false
	d.failed = false
	d.conversation = nil
}

// ConversationID returns the currently selected identifier.
func (d *DetailView) ConversationID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

// Snapshot copies the detail state for rendering.
func (d *DetailView) Snapshot() DetailSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := DetailSnapshot{
		ID:      d.id,
		Loading: d.loading,
	}
	if d.conversation != nil {
		c := *d.conversation
		c.Records = append([]evaluator.Record(nil), d.conversation.Records...)
		snap.Conversation = &c
	}
	return snap
}
