package testutil

import (
	"time"

	"github.com/runixer/evalboard/internal/evaluator"
)

// TestTime is the start time used by the sample conversations.
var TestTime = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

// TestConversations returns a list response in the order the evaluator sends
// it (newest first).
func TestConversations() []evaluator.Conversation {
	return []evaluator.Conversation{
		{
			ID:          "conv-3",
			AvgCSAT:     0.12345,
			FirstInput:  "How do I reset my password?",
			FirstOutput: "Open Settings and choose **Reset password**.",
			StartTime:   evaluator.NewTimestamp(TestTime),
			IsRated:     true,
		},
		{
			ID:          "conv-1",
			AvgCSAT:     1,
			FirstInput:  "What are your opening hours?",
			FirstOutput: "We are open from 8:00 to 17:00.",
			StartTime:   evaluator.NewTimestamp(TestTime.Add(-48 * time.Hour)),
			IsRated:     true,
		},
		{
			ID:          "conv-2",
			AvgCSAT:     0,
			FirstInput:  "Hello",
			FirstOutput: "Hi! How can I help?",
			StartTime:   evaluator.NewTimestamp(TestTime.Add(-24 * time.Hour)),
			IsRated:     false,
		},
	}
}

// TestRate returns a rate with distinct values for every score.
func TestRate(conversationID, recordID string) *evaluator.Rate {
	return &evaluator.Rate{
		ID:               "rate-" + recordID,
		RecordID:         recordID,
		ConversationID:   conversationID,
		CSAT:             0.8,
		Groundedness:     0.9,
		AnswerRelevance:  0.7,
		ContextRelevance: 0.6,
		Sentiment:        0.5,
		CreatedDate:      evaluator.NewTimestamp(TestTime.Add(time.Minute)),
	}
}

// RatedConversation returns a conversation with a single rated record.
func RatedConversation(id string) evaluator.Conversation {
	recordID := id + "-r1"
	return evaluator.Conversation{
		ID:          id,
		AvgCSAT:     0.8,
		FirstInput:  "Is the store open on Sunday?",
		FirstOutput: "Yes, from 9:00 to 12:00.",
		StartTime:   evaluator.NewTimestamp(TestTime),
		IsRated:     true,
		Records: []evaluator.Record{
			{
				ID:             recordID,
				ConversationID: id,
				MainInput:      "Is the store open on Sunday?",
				MainOutput:     "Yes, from 9:00 to 12:00.",
				StartTime:      evaluator.NewTimestamp(TestTime),
				CreatedDate:    evaluator.NewTimestamp(TestTime),
				IsRated:        true,
				Rate:           TestRate(id, recordID),
			},
		},
	}
}

// UnratedConversation returns a conversation with a single unrated record.
func UnratedConversation(id string) evaluator.Conversation {
	return evaluator.Conversation{
		ID:          id,
		FirstInput:  "Hello",
		FirstOutput: "Hi! How can I help?",
		StartTime:   evaluator.NewTimestamp(TestTime),
		Records: []evaluator.Record{
			{
				ID:             id + "-r1",
				ConversationID: id,
				MainInput:      "Hello",
				MainOutput:     "Hi! How can I help?",
				StartTime:      evaluator.NewTimestamp(TestTime),
				IsRated:        false,
			},
		},
	}
}
