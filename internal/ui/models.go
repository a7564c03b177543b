package ui

import (
	"github.com/runixer/evalboard/internal/dashboard"
	"github.com/runixer/evalboard/internal/evaluator"
	"github.com/runixer/evalboard/internal/notify"
)

// PageData is the common data passed to all templates.
type PageData struct {
	Title         string
	Lang          string
	Active        string
	Notifications []notify.Notification
	Copied        notify.Notification
	Data          interface{}
}

// DashboardData drives dashboard.html.
type DashboardData struct {
	Loading   bool
	Rows      []evaluator.Conversation
	PageSize  int
	ModalOpen bool
	Detail    DetailData
}

// DetailData drives the detail modal.
type DetailData struct {
	ID              string
	Loading         bool
	HasConversation bool
	Records         []RecordView
}

// RecordView is one exchange in the detail modal. Rate is only meaningful
// when Rated is true.
type RecordView struct {
	ID    string
	Rated bool
	Rate  evaluator.Rate
	User  ChatMessage
	Bot   ChatMessage
}

// NewRecordView builds the view of r. Scores are read through Record.Score,
// so an unrated record never exposes rate values.
func NewRecordView(r evaluator.Record) RecordView {
	view := RecordView{ID: r.ID}
	if rate, err := r.Score(); err == nil {
		view.Rated = true
		view.Rate = rate
	}
	startTime := r.StartTime.Time
	view.User = NewChatMessage(false, r.MainInput, &startTime)
	view.Bot = NewChatMessage(true, r.MainOutput, nil)
	return view
}

// NewDashboardData combines the list and detail snapshots of a session.
func NewDashboardData(list dashboard.ListSnapshot, detail dashboard.DetailSnapshot, pageSize int) DashboardData {
	data := DashboardData{
		Loading:   list.Loading,
		Rows:      list.Conversations,
		PageSize:  pageSize,
		ModalOpen: list.ModalOpen,
		Detail: DetailData{
			ID:      detail.ID,
			Loading: detail.Loading,
		},
	}
	if detail.Conversation != nil {
		data.Detail.HasConversation = true
		data.Detail.Records = make([]RecordView, 0, len(detail.Conversation.Records))
		for _, r := range detail.Conversation.Records {
			data.Detail.Records = append(data.Detail.Records, NewRecordView(r))
		}
	}
	return data
}
