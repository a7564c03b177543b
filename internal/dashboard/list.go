package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/runixer/evalboard/internal/evaluator"
	"github.com/runixer/evalboard/internal/i18n"
	"github.com/runixer/evalboard/internal/notify"
)

// ListView holds the conversation table and the modal selection.
type ListView struct {
	client   evaluator.Client
	logger   *slog.Logger
	notices  *notify.Queue
	t        i18n.Localizer
	detail   *DetailView
	pageSize int

	mu            sync.Mutex
	loading       bool
	conversations []evaluator.Conversation
	selectedID    string
	modalOpen     bool
}

// ListSnapshot is a copy of the list state taken for one render. Loading is
// only seen by a render that runs while another request of the same session
// is still loading, such as a second browser tab; the browser's own page
// loading indicator covers the request that triggered the load.
type ListSnapshot struct {
	Loading       bool
	Conversations []evaluator.Conversation
	SelectedID    string
	ModalOpen     bool
}

// NewListView creates a list view that opens conversations in detail.
// A positive pageSize makes Load walk the evaluator's pages; otherwise the
// list is requested in one call without paging parameters.
func NewListView(client evaluator.Client, logger *slog.Logger, notices *notify.Queue, t i18n.Localizer, detail *DetailView, pageSize int) *ListView {
	return &ListView{
		client:   client,
		logger:   logger.With("component", "list_view"),
		notices:  notices,
		t:        t,
		detail:   detail,
		pageSize: pageSize,
	}
}

// Activate starts a new visit of the dashboard: the modal is closed, the
// selection and the cached detail are dropped and the list is fetched again.
func (l *ListView) Activate(ctx context.Context) error {
	l.mu.Lock()
	l.selectedID = ""
	l.modalOpen = false
	l.mu.Unlock()

	l.detail.Reset()
	return l.Load(ctx)
}

// Load fetches the conversation list. On success the rows are replaced in the
// order the evaluator returned them; on failure the table is emptied and one
// error notification is queued. Loading is cleared either way.
func (l *ListView) Load(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	conversations, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false

	if err != nil {
		l.conversations = nil
		l.logger.Warn("Failed to get conversations", "error", err)
		l.notices.Push(notify.Error(l.t("notify.list_failed")))
		return err
	}

	l.conversations = conversations
	l.logger.Debug("Loaded conversations", "count", len(conversations))
	return nil
}

// fetch reads the whole list. With paging it asks for the total first and
// then requests every page; rows repeated across pages are kept once.
func (l *ListView) fetch(ctx context.Context) ([]evaluator.Conversation, error) {
	if l.pageSize <= 0 {
		return l.client.ListConversations(ctx, evaluator.ListOptions{})
	}

	total, err := l.client.CountConversations(ctx)
	if err != nil {
		return nil, err
	}

	pages := (total + l.pageSize - 1) / l.pageSize
	conversations := make([]evaluator.Conversation, 0, total)
	seen := make(map[string]struct{}, total)
	for page := 1; page <= pages; page++ {
		batch, err := l.client.ListConversations(ctx, evaluator.ListOptions{PageIndex: page, PageSize: l.pageSize})
		if err != nil {
			return nil, err
		}
		for _, c := range batch {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			conversations = append(conversations, c)
		}
		if len(batch) < l.pageSize {
			break
		}
	}
	l.logger.Debug("Fetched conversation pages", "total", total, "page_size", l.pageSize, "pages", pages)
	return conversations, nil
}

// Select opens the modal for id and hands it to the detail view, which only
// fetches when the id changed. The row snapshot is left untouched.
func (l *ListView) Select(ctx context.Context, id string) error {
	l.mu.Lock()
	l.selectedID = id
	l.modalOpen = true
	l.mu.Unlock()

	return l.detail.SetConversationID(ctx, id)
}

// CloseModal hides the modal and keeps the selection.
func (l *ListView) CloseModal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modalOpen = false
}

// Snapshot copies the list state for rendering.
func (l *ListView) Snapshot() ListSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ListSnapshot{
		Loading:       l.loading,
		Conversations: append([]evaluator.Conversation(nil), l.conversations...),
		SelectedID:    l.selectedID,
		ModalOpen:     l.modalOpen,
	}
}
