package fixture

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/runixer/evalboard/internal/evaluator"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedFile is the YAML layout accepted by Seed.
type SeedFile struct {
	Conversations []SeedConversation `yaml:"conversations"`
}

// SeedConversation groups records under one conversation id. An empty id is
// replaced with a random UUID.
type SeedConversation struct {
	ID      string       `yaml:"id"`
	Records []SeedRecord `yaml:"records"`
}

// SeedRecord is one exchange. A record with a rate is stored as rated.
type SeedRecord struct {
	ID          string    `yaml:"id"`
	Input       string    `yaml:"input"`
	Output      string    `yaml:"output"`
	Data        string    `yaml:"data"`
	StartTime   string    `yaml:"start_time"`
	CreatedDate string    `yaml:"created_date"`
	Rate        *SeedRate `yaml:"rate"`
}

// SeedRate holds the scores of a rated record.
type SeedRate struct {
	CSAT             float64 `yaml:"csat"`
	Groundedness     float64 `yaml:"groundedness"`
	AnswerRelevance  float64 `yaml:"answer_relevance"`
	ContextRelevance float64 `yaml:"context_relevance"`
	Sentiment        float64 `yaml:"sentiment"`
}

// DefaultSeed returns the embedded sample data set.
func DefaultSeed() (SeedFile, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a seed file from path.
func LoadSeed(path string) (SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, err
	}
	return ParseSeed([]byte(os.ExpandEnv(string(data))))
}

// ParseSeed decodes a seed document.
func ParseSeed(data []byte) (SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// Seed inserts every conversation of seed in a single transaction.
func (s *Store) Seed(ctx context.Context, seed SeedFile) error {
	records, err := seed.records()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if err := insertRecord(ctx, tx, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("Seeded fixture database", "conversations", len(seed.Conversations), "records", len(records))
	return nil
}

func (f SeedFile) records() ([]evaluator.Record, error) {
	var out []evaluator.Record
	for ci, c := range f.Conversations {
		conversationID := c.ID
		if conversationID == "" {
			conversationID = uuid.NewString()
		}
		if len(c.Records) == 0 {
			return nil, fmt.Errorf("seed conversation %d (%s) has no records", ci, conversationID)
		}

		for ri, sr := range c.Records {
			start, err := evaluator.ParseTimestamp(sr.StartTime)
			if err != nil {
				return nil, fmt.Errorf("seed conversation %s record %d: start_time: %w", conversationID, ri, err)
			}
			if start.IsZero() {
				return nil, fmt.Errorf("seed conversation %s record %d: start_time is required", conversationID, ri)
			}
			created, err := evaluator.ParseTimestamp(sr.CreatedDate)
			if err != nil {
				return nil, fmt.Errorf("seed conversation %s record %d: created_date: %w", conversationID, ri, err)
			}
			if created.IsZero() {
				created = start
			}

			id := sr.ID
			if id == "" {
				id = uuid.NewString()
			}

			r := evaluator.Record{
				ID:             id,
				ConversationID: conversationID,
				RecordData:     sr.Data,
				MainInput:      sr.Input,
				MainOutput:     sr.Output,
				StartTime:      start,
				CreatedDate:    created,
				IsRated:        sr.Rate != nil,
			}
			if sr.Rate != nil {
				r.Rate = &evaluator.Rate{
					ID:               uuid.NewString(),
					RecordID:         id,
					ConversationID:   conversationID,
					CSAT:             sr.Rate.CSAT,
					Groundedness:     sr.Rate.Groundedness,
					AnswerRelevance:  sr.Rate.AnswerRelevance,
					ContextRelevance: sr.Rate.ContextRelevance,
					Sentiment:        sr.Rate.Sentiment,
					CreatedDate:      created,
				}
			}
			out = append(out, r)
		}
	}
	return out, nil
}
