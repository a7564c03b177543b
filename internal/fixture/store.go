// Package fixture implements a development stand-in for the evaluation
// service: a SQLite database of records and rates served over the same HTTP
// surface the dashboard consumes.
package fixture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/runixer/evalboard/internal/evaluator"
)

// ErrNotFound is returned for a conversation id without records.
var ErrNotFound = errors.New("conversation not found")

// DefaultPageSize is used when pageSize is not positive.
const DefaultPageSize = 100

// timeLayout is fixed-width so that text ordering equals time ordering.
const timeLayout = "2006-01-02 15:04:05.000000"

// Store holds evaluation records and rates.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens the SQLite database at path. Use ":memory:" for tests.
func NewStore(logger *slog.Logger, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One connection: an in-memory database only exists on its own
	// connection, and writes are serialized anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	storeLogger := logger.With("component", "fixture_store")

	if path != ":memory:" {
		var journalMode string
		if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
			storeLogger.Warn("failed to set WAL journal mode", "error", err)
		} else {
			storeLogger.Info("SQLite journal mode set", "mode", journalMode, "path", path)
		}
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		storeLogger.Warn("failed to set busy timeout", "error", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		storeLogger.Warn("failed to enable foreign keys", "error", err)
	}

	return &Store{db: db, logger: storeLogger}, nil
}

// Init creates the schema if it does not exist.
func (s *Store) Init() error {
	query := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		record_data TEXT NOT NULL DEFAULT '',
		main_input TEXT NOT NULL DEFAULT '',
		main_output TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		is_rated INTEGER NOT NULL DEFAULT 0,
		created_date TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_records_conversation ON records(conversation_id, start_time);

	CREATE TABLE IF NOT EXISTS rates (
		id TEXT PRIMARY KEY,
		record_id TEXT NOT NULL REFERENCES records(id),
		conversation_id TEXT NOT NULL,
		csat REAL NOT NULL DEFAULT 0,
		groundedness REAL NOT NULL DEFAULT 0,
		answer_relevance REAL NOT NULL DEFAULT 0,
		context_relevance REAL NOT NULL DEFAULT 0,
		sentiment REAL NOT NULL DEFAULT 0,
		created_date TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_rates_record ON rates(record_id);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListConversations returns one row per conversation built from its first
// record, newest first. avg_csat averages the rates of the conversation's
// rated records and is 0 when none is rated. pageIndex is 1-based.
func (s *Store) ListConversations(ctx context.Context, pageIndex, pageSize int) ([]evaluator.Conversation, error) {
	if pageIndex < 1 {
		pageIndex = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	offset := (pageIndex - 1) * pageSize

	query := `
	SELECT head.conversation_id, head.main_input, head.main_output,
	       COALESCE(agg.avg_csat, 0), head.start_time, head.is_rated
	FROM (
		SELECT conversation_id, main_input, main_output, start_time, is_rated,
		       ROW_NUMBER() OVER (PARTITION BY conversation_id ORDER BY start_time) AS rn
		FROM records
	) head
	LEFT JOIN (
		SELECT re.conversation_id, AVG(ra.csat) AS avg_csat
		FROM records re JOIN rates ra ON re.id = ra.record_id
		WHERE re.is_rated = 1
		GROUP BY re.conversation_id
	) agg ON agg.conversation_id = head.conversation_id
	WHERE head.rn = 1
	ORDER BY head.start_time DESC
	LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []evaluator.Conversation{}
	for rows.Next() {
		var c evaluator.Conversation
		var startTime string
		if err := rows.Scan(&c.ID, &c.FirstInput, &c.FirstOutput, &c.AvgCSAT, &startTime, &c.IsRated); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		if c.StartTime, err = evaluator.ParseTimestamp(startTime); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// CountConversations returns the number of distinct conversations.
func (s *Store) CountConversations(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT conversation_id) FROM records").Scan(&total)
	return total, err
}

// GetConversation returns a conversation with all of its records in
// start_time order and their rates, if any.
func (s *Store) GetConversation(ctx context.Context, id string) (evaluator.Conversation, error) {
	query := `
	SELECT re.id, re.conversation_id, re.record_data, re.main_input, re.main_output,
	       re.start_time, re.is_rated, re.created_date,
	       ra.id, ra.csat, ra.groundedness, ra.answer_relevance, ra.context_relevance,
	       ra.sentiment, ra.created_date
	FROM records re LEFT JOIN rates ra ON re.id = ra.record_id
	WHERE re.conversation_id = ?
	ORDER BY re.start_time`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return evaluator.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	defer rows.Close()

	var records []evaluator.Record
	for rows.Next() {
		var (
			r               evaluator.Record
			startTime       string
			createdDate     sql.NullString
			rateID          sql.NullString
			csat            sql.NullFloat64
			grounded        sql.NullFloat64
			answerRel       sql.NullFloat64
			ctxRel          sql.NullFloat64
			sentiment       sql.NullFloat64
			rateCreatedDate sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.RecordData, &r.MainInput, &r.MainOutput,
			&startTime, &r.IsRated, &createdDate,
			&rateID, &csat, &grounded, &answerRel, &ctxRel, &sentiment, &rateCreatedDate); err != nil {
			return evaluator.Conversation{}, fmt.Errorf("scan record: %w", err)
		}

		if r.StartTime, err = evaluator.ParseTimestamp(startTime); err != nil {
			return evaluator.Conversation{}, err
		}
		if r.CreatedDate, err = evaluator.ParseTimestamp(createdDate.String); err != nil {
			return evaluator.Conversation{}, err
		}

		if rateID.Valid {
			rate := &evaluator.Rate{
				ID:               rateID.String,
				RecordID:         r.ID,
				ConversationID:   r.ConversationID,
				CSAT:             csat.Float64,
				Groundedness:     grounded.Float64,
				AnswerRelevance:  answerRel.Float64,
				ContextRelevance: ctxRel.Float64,
				Sentiment:        sentiment.Float64,
			}
			if rate.CreatedDate, err = evaluator.ParseTimestamp(rateCreatedDate.String); err != nil {
				return evaluator.Conversation{}, err
			}
			r.Rate = rate
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return evaluator.Conversation{}, err
	}
	if len(records) == 0 {
		return evaluator.Conversation{}, ErrNotFound
	}

	first := records[0]
	return evaluator.Conversation{
		ID:          first.ConversationID,
		AvgCSAT:     averageCSAT(records),
		FirstInput:  first.MainInput,
		FirstOutput: first.MainOutput,
		StartTime:   first.StartTime,
		IsRated:     anyRated(records),
		Records:     records,
	}, nil
}

func averageCSAT(records []evaluator.Record) float64 {
	var sum float64
	var n int
	for _, r := range records {
		if r.IsRated && r.Rate != nil {
			sum += r.Rate.CSAT
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func anyRated(records []evaluator.Record) bool {
	for _, r := range records {
		if r.IsRated {
			return true
		}
	}
	return false
}

// insertRecord adds a record inside tx. A non-nil rate marks it rated.
func insertRecord(ctx context.Context, tx *sql.Tx, r evaluator.Record) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO records (id, conversation_id, record_data, main_input, main_output, start_time, is_rated, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ConversationID, r.RecordData, r.MainInput, r.MainOutput,
		formatTime(r.StartTime.Time), r.Rate != nil, nullTime(r.CreatedDate.Time))
	if err != nil {
		return fmt.Errorf("insert record %s: %w", r.ID, err)
	}
	if r.Rate == nil {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rates (id, record_id, conversation_id, csat, groundedness, answer_relevance, context_relevance, sentiment, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Rate.ID, r.ID, r.ConversationID, r.Rate.CSAT, r.Rate.Groundedness,
		r.Rate.AnswerRelevance, r.Rate.ContextRelevance, r.Rate.Sentiment, nullTime(r.Rate.CreatedDate.Time))
	if err != nil {
		return fmt.Errorf("insert rate for record %s: %w", r.ID, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
