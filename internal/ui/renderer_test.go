package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runixer/evalboard/internal/dashboard"
	"github.com/runixer/evalboard/internal/notify"
	"github.com/runixer/evalboard/internal/testutil"
)

func renderPage(t *testing.T, page string, data PageData) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, page, data, GetFuncMap(time.UTC, testutil.TestLocalizer(t))))
	return buf.String()
}

func TestRenderDashboard_Rows(t *testing.T) {
	list := dashboard.ListSnapshot{Conversations: testutil.TestConversations()}
	body := renderPage(t, "dashboard.html", PageData{
		Lang:   "en",
		Active: "dashboard",
		Copied: notify.Copied(""),
		Data:   NewDashboardData(list, dashboard.DetailSnapshot{}, 10),
	})

	doc := testutil.ParseHTML(t, body)
	rows := testutil.FindByClass(doc, "conversation-row")
	require.Len(t, rows, 3)
	assert.Equal(t, "conv-3", testutil.Attr(rows[0], "data-id"))
	assert.Equal(t, "conv-1", testutil.Attr(rows[1], "data-id"))
	assert.Equal(t, "conv-2", testutil.Attr(rows[2], "data-id"))

	assert.Equal(t, []string{"0.1235", "1.0000", "0.0000"}, testutil.Texts(testutil.FindByClass(doc, "avg-csat")))
	assert.Equal(t, "05/03/2024 14:30:00", testutil.Text(testutil.FindByClass(doc, "start-time")[0]))

	ids := testutil.FindByClass(doc, "conversation-id")
	assert.Equal(t, "conv-3", testutil.Attr(ids[0], "data-copy"))

	assert.Empty(t, testutil.FindAll(doc, testutil.ByID("detail-modal")))
	assert.Empty(t, testutil.FindByClass(doc, "toast-error"))

	table := testutil.FindAll(doc, testutil.ByID("conversations"))
	require.Len(t, table, 1)
	assert.Equal(t, "10", testutil.Attr(table[0], "data-page-size"))
}

func TestRenderDashboard_Empty(t *testing.T) {
	body := renderPage(t, "dashboard.html", PageData{
		Data: NewDashboardData(dashboard.ListSnapshot{}, dashboard.DetailSnapshot{}, 10),
	})
	doc := testutil.ParseHTML(t, body)
	assert.Empty(t, testutil.FindByClass(doc, "conversation-row"))
	assert.Len(t, testutil.FindByClass(doc, "empty-row"), 1)
}

func TestRenderDashboard_RatedRecord(t *testing.T) {
	conversation := testutil.RatedConversation("abc")
	data := NewDashboardData(
		dashboard.ListSnapshot{ModalOpen: true, SelectedID: "abc"},
		dashboard.DetailSnapshot{ID: "abc", Conversation: &conversation},
		10,
	)
	doc := testutil.ParseHTML(t, renderPage(t, "dashboard.html", PageData{Data: data}))

	require.Len(t, testutil.FindAll(doc, testutil.ByID("detail-modal")), 1)
	csat := testutil.FindByClass(doc, "csat-tag")
	require.Len(t, csat, 1)
	assert.Equal(t, "CSAT: 0.8", testutil.Text(csat[0]))
	assert.Empty(t, testutil.FindByClass(doc, "not-rated-tag"))

	scores := testutil.FindByClass(doc, "score-tag")
	require.Len(t, scores, 4)
	assert.Equal(t, []string{
		"Answer Relevance: 0.7",
		"Context Relevance: 0.6",
		"Groundedness: 0.9",
		"Sentiment: 0.5",
	}, testutil.Texts(scores))

	messages := testutil.FindByClass(doc, "chat-message")
	require.Len(t, messages, 2)
	assert.Len(t, testutil.FindAll(messages[0], testutil.ByTag("time")), 1)
	assert.Empty(t, testutil.FindAll(messages[1], testutil.ByTag("time")))
	assert.Contains(t, testutil.Attr(messages[1], "class"), "bot")
}

func TestRenderDashboard_UnratedRecord(t *testing.T) {
	conversation := testutil.UnratedConversation("abc")
	data := NewDashboardData(
		dashboard.ListSnapshot{ModalOpen: true, SelectedID: "abc"},
		dashboard.DetailSnapshot{ID: "abc", Conversation: &conversation},
		10,
	)
	doc := testutil.ParseHTML(t, renderPage(t, "dashboard.html", PageData{Data: data}))

	notRated := testutil.FindByClass(doc, "not-rated-tag")
	require.Len(t, notRated, 1)
	assert.Equal(t, "Not rated", testutil.Text(notRated[0]))
	assert.Empty(t, testutil.FindByClass(doc, "csat-tag"))
	assert.Empty(t, testutil.FindByClass(doc, "score-tag"))
}

func TestRenderDashboard_DetailLoading(t *testing.T) {
	data := NewDashboardData(
		dashboard.ListSnapshot{ModalOpen: true, SelectedID: "abc"},
		dashboard.DetailSnapshot{ID: "abc", Loading: true},
		10,
	)
	doc := testutil.ParseHTML(t, renderPage(t, "dashboard.html", PageData{Data: data}))
	modal := testutil.FindAll(doc, testutil.ByID("detail-modal"))
	require.Len(t, modal, 1)
	assert.Len(t, testutil.FindByClass(modal[0], "spinner"), 1)
	assert.Empty(t, testutil.FindByClass(doc, "record"))
}

func TestRenderNotifications(t *testing.T) {
	body := renderPage(t, "login.html", PageData{
		Active: "login",
		Notifications: []notify.Notification{
			notify.Error("Can not get conversations", notify.WithDescription("status 502")),
		},
		Copied: notify.Copied(""),
	})
	doc := testutil.ParseHTML(t, body)

	toasts := testutil.FindByClass(doc, "toast-error")
	require.Len(t, toasts, 1)
	assert.Equal(t, "Can not get conversations status 502", testutil.Text(toasts[0]))
	assert.Equal(t, "4500", testutil.Attr(toasts[0], "data-duration"))

	assert.Contains(t, body, `class="toast toast-success"`)
	assert.Contains(t, body, ">Copied<")
	assert.Len(t, testutil.FindByClass(doc, "placeholder"), 1)
}

func TestRenderDashboard_ModalLabels(t *testing.T) {
	conversation := testutil.RatedConversation("abc")
	conversation.Records = append(conversation.Records, testutil.UnratedConversation("abc").Records...)
	data := NewDashboardData(
		dashboard.ListSnapshot{ModalOpen: true, SelectedID: "abc"},
		dashboard.DetailSnapshot{ID: "abc", Conversation: &conversation},
		10,
	)
	doc := testutil.ParseHTML(t, renderPage(t, "dashboard.html", PageData{Data: data}))

	tags := testutil.FindByClass(doc, "conversation-tag")
	require.Len(t, tags, 1)
	assert.Equal(t, "Conversation: abc", testutil.Text(tags[0]))
	assert.Equal(t, "abc", testutil.Attr(tags[0], "data-copy"))

	labels := testutil.Texts(testutil.FindByClass(doc, "record-label"))
	assert.Equal(t, []string{"Record:", "Record:"}, labels)
}

func TestRenderDashboard_ModalWithoutSelection(t *testing.T) {
	data := NewDashboardData(dashboard.ListSnapshot{ModalOpen: true}, dashboard.DetailSnapshot{}, 10)
	doc := testutil.ParseHTML(t, renderPage(t, "dashboard.html", PageData{Data: data}))

	require.Len(t, testutil.FindAll(doc, testutil.ByID("detail-modal")), 1)
	assert.Empty(t, testutil.FindByClass(doc, "conversation-tag"))
}
