package fixture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runixer/evalboard/internal/evaluator"
	"github.com/runixer/evalboard/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testutil.TestLogger(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func ts(s string) evaluator.Timestamp {
	parsed, err := evaluator.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return parsed
}

func rate(csat float64) *SeedRate {
	return &SeedRate{CSAT: csat, Groundedness: 0.9, AnswerRelevance: 0.7, ContextRelevance: 0.6, Sentiment: 0.5}
}

// testSeed holds three conversations:
//   - conv-a: two rated records, started 2024-03-05 10:00
//   - conv-b: one unrated record, started 2024-03-06 09:00
//   - conv-c: one unrated and one rated record, started 2024-03-04 08:00
func testSeed() SeedFile {
	return SeedFile{Conversations: []SeedConversation{
		{ID: "conv-a", Records: []SeedRecord{
			{ID: "a2", Input: "second", Output: "reply 2", StartTime: "2024-03-05 10:05:00", Rate: rate(0.6)},
			{ID: "a1", Input: "first", Output: "reply 1", StartTime: "2024-03-05 10:00:00", Rate: rate(0.8)},
		}},
		{ID: "conv-b", Records: []SeedRecord{
			{ID: "b1", Input: "hello", Output: "hi", StartTime: "2024-03-06 09:00:00"},
		}},
		{ID: "conv-c", Records: []SeedRecord{
			{ID: "c1", Input: "q1", Output: "r1", StartTime: "2024-03-04 08:00:00"},
			{ID: "c2", Input: "q2", Output: "r2", StartTime: "2024-03-04 08:01:00", Rate: rate(0.4)},
		}},
	}}
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := newTestStore(t)
	require.NoError(t, store.Seed(context.Background(), testSeed()))
	return store
}

func TestStore_ListConversations(t *testing.T) {
	store := seededStore(t)

	got, err := store.ListConversations(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, got, 3)

	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"conv-b", "conv-a", "conv-c"}, ids)

	a := got[1]
	assert.Equal(t, "first", a.FirstInput)
	assert.Equal(t, "reply 1", a.FirstOutput)
	assert.InDelta(t, 0.7, a.AvgCSAT, 1e-9)
	assert.True(t, a.StartTime.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
	assert.True(t, a.IsRated)
	assert.Empty(t, a.Records)

	assert.Equal(t, 0.0, got[0].AvgCSAT)
	assert.False(t, got[0].IsRated)

	// First record of conv-c is unrated, but the rated second one still counts.
	assert.InDelta(t, 0.4, got[2].AvgCSAT, 1e-9)
	assert.False(t, got[2].IsRated)
}

func TestStore_ListConversations_Pagination(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		pageIndex int
		pageSize  int
		want      []string
	}{
		{"first page", 1, 2, []string{"conv-b", "conv-a"}},
		{"second page", 2, 2, []string{"conv-c"}},
		{"past the end", 3, 2, []string{}},
		{"defaults", 0, 0, []string{"conv-b", "conv-a", "conv-c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListConversations(ctx, tt.pageIndex, tt.pageSize)
			require.NoError(t, err)
			ids := []string{}
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_ListConversations_Empty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.ListConversations(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_CountConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	total, err := store.CountConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	require.NoError(t, store.Seed(ctx, testSeed()))
	total, err = store.CountConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestStore_GetConversation(t *testing.T) {
	store := seededStore(t)

	got, err := store.GetConversation(context.Background(), "conv-a")
	require.NoError(t, err)

	assert.Equal(t, "conv-a", got.ID)
	assert.Equal(t, "first", got.FirstInput)
	assert.InDelta(t, 0.7, got.AvgCSAT, 1e-9)
	assert.True(t, got.IsRated)
	require.Len(t, got.Records, 2)

	first := got.Records[0]
	assert.Equal(t, "a1", first.ID)
	assert.Equal(t, "conv-a", first.ConversationID)
	assert.True(t, first.IsRated)
	require.NotNil(t, first.Rate)
	assert.Equal(t, "a1", first.Rate.RecordID)
	assert.Equal(t, 0.8, first.Rate.CSAT)
	assert.Equal(t, 0.9, first.Rate.Groundedness)
	assert.Equal(t, 0.7, first.Rate.AnswerRelevance)
	assert.Equal(t, 0.6, first.Rate.ContextRelevance)
	assert.Equal(t, 0.5, first.Rate.Sentiment)
	assert.True(t, first.CreatedDate.Equal(first.StartTime.Time), "created_date defaults to start_time")

	assert.Equal(t, "a2", got.Records[1].ID)
}

func TestStore_GetConversation_MixedRates(t *testing.T) {
	store := seededStore(t)

	got, err := store.GetConversation(context.Background(), "conv-c")
	require.NoError(t, err)
	require.Len(t, got.Records, 2)

	assert.False(t, got.Records[0].IsRated)
	assert.Nil(t, got.Records[0].Rate)
	assert.True(t, got.Records[1].IsRated)
	assert.True(t, got.IsRated)
	assert.InDelta(t, 0.4, got.AvgCSAT, 1e-9)
}

func TestStore_GetConversation_NotFound(t *testing.T) {
	store := seededStore(t)

	_, err := store.GetConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_TimePrecision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := SeedFile{Conversations: []SeedConversation{{ID: "p", Records: []SeedRecord{
		{ID: "p1", StartTime: "2024-03-05T14:30:00.123456+02:00"},
	}}}}
	require.NoError(t, store.Seed(ctx, seed))

	got, err := store.GetConversation(ctx, "p")
	require.NoError(t, err)
	want := ts("2024-03-05 12:30:00.123456")
	assert.True(t, got.StartTime.Equal(want.Time), "got %s", got.StartTime)
}
