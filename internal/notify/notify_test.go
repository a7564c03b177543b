package notify

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	n := New(SeverityError, "Can not get conversations")
	assert.Equal(t, SeverityError, n.Severity)
	assert.Equal(t, "Can not get conversations", n.Message)
	assert.Empty(t, n.Description)
	assert.Equal(t, 4500*time.Millisecond, n.Duration)
	assert.Equal(t, int64(4500), n.DurationMillis())
}

func TestOptions(t *testing.T) {
	n := New(SeverityWarning, "msg", WithDescription("details"), WithDuration(2*time.Second))
	assert.Equal(t, "details", n.Description)
	assert.Equal(t, 2*time.Second, n.Duration)

	n = New(SeverityInfo, "msg", WithDuration(0))
	assert.Equal(t, DefaultDuration, n.Duration)
}

func TestCopied(t *testing.T) {
	n := Copied("")
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.Equal(t, "Copied", n.Message)

	assert.Equal(t, "Đã sao chép", Copied("Đã sao chép").Message)
}

func TestNotificationJSON(t *testing.T) {
	data, err := json.Marshal(Error("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"boom"}`, string(data))
}

func TestQueue_DrainOnce(t *testing.T) {
	var q Queue
	q.Push(Error("first"))
	q.Push(Error("second"))
	assert.Equal(t, 2, q.Len())

	drained := q.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "first", drained[0].Message)
	assert.Equal(t, "second", drained[1].Message)

	assert.Empty(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Concurrent(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(New(SeverityInfo, "x"))
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 50)
}
