package evaluator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotRated is returned by Record.Score for records without an evaluation.
var ErrNotRated = errors.New("record is not rated")

// Conversation is one chatbot session as reported by the evaluator.
// Records is only populated by GetConversation.
type Conversation struct {
	ID          string    `json:"id"`
	AvgCSAT     float64   `json:"avg_csat"`
	FirstInput  string    `json:"first_input"`
	FirstOutput string    `json:"first_output"`
	StartTime   Timestamp `json:"start_time"`
	IsRated     bool      `json:"is_rated"`
	Records     []Record  `json:"records,omitempty"`
}

// Record is one user input / bot output exchange.
type Record struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	RecordData     string    `json:"record_data"`
	MainInput      string    `json:"main_input"`
	MainOutput     string    `json:"main_output"`
	StartTime      Timestamp `json:"start_time"`
	CreatedDate    Timestamp `json:"created_date"`
	IsRated        bool      `json:"is_rated"`
	Rate           *Rate     `json:"rate,omitempty"`
}

// Rate holds the scores the evaluator assigned to a record.
type Rate struct {
	ID               string    `json:"id"`
	RecordID         string    `json:"record_id"`
	ConversationID   string    `json:"conversation_id"`
	CSAT             float64   `json:"csat"`
	Groundedness     float64   `json:"groundedness"`
	AnswerRelevance  float64   `json:"answer_relevance"`
	ContextRelevance float64   `json:"context_relevance"`
	Sentiment        float64   `json:"sentiment"`
	CreatedDate      Timestamp `json:"created_date"`
}

// Score returns the record's rate. It fails with ErrNotRated unless the record
// is flagged as rated and actually carries a rate.
func (r Record) Score() (Rate, error) {
	if !r.IsRated || r.Rate == nil {
		return Rate{}, ErrNotRated
	}
	return *r.Rate, nil
}

// normalize enforces that a rate is only present on rated records.
// The evaluator serializes an empty rate object even for unrated records.
func (r *Record) normalize() {
	if !r.IsRated {
		r.Rate = nil
	}
}

func (c *Conversation) normalize() {
	for i := range c.Records {
		c.Records[i].normalize()
	}
}

// Timestamp decodes the date formats the evaluator emits: RFC 3339, ISO 8601
// without a zone, and Python's str(datetime). Values without a zone are UTC.
// JSON null and "" decode to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s using the layouts accepted by Timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
