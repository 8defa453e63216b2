package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/natserract/eircode/pkg/eircode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeLookup struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (f *fakeLookup) track() func() {
	n := f.inFlight.Add(1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeLookup) FindAddress(context.Context, string, eircode.FindAddressOptions) (any, error) {
	return nil, errors.New("not used")
}

func (f *fakeLookup) PostcodeLookup(_ context.Context, postcode string) (any, error) {
	defer f.track()()
	time.Sleep(f.delay)
	if postcode == "BAD" {
		return map[string]any{"errors": []any{}}, &eircode.APIError{Domain: eircode.ErrorDomain, Code: 7, Message: "Bad key"}
	}
	return map[string]any{"postcode": postcode}, nil
}

func (f *fakeLookup) VerifyAddress(context.Context, string, string, eircode.VerifyAddressOptions) (any, error) {
	return nil, errors.New("not used")
}

func (f *fakeLookup) GetEcadData(_ context.Context, ecadID string) (any, error) {
	defer f.track()()
	time.Sleep(f.delay)
	return map[string]any{"ecadId": ecadID}, nil
}

type memorySink struct {
	mu      sync.Mutex
	saved   []Result
	failFor string
}

func (s *memorySink) SaveResult(_ context.Context, r Result) error {
	if r.Job.Value == s.failFor {
		return errors.New("sink down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r)
	return nil
}

func TestParseJobs(t *testing.T) {
	input := `
# sample data
X33 2KPH
ecad: 1701828123

A86 VC04
`
	jobs, err := ParseJobs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Job{
		{Kind: KindPostcode, Value: "X33 2KPH"},
		{Kind: KindEcad, Value: "1701828123"},
		{Kind: KindPostcode, Value: "A86 VC04"},
	}, jobs)
}

func TestRunKeepsJobOrderAndCounts(t *testing.T) {
	client := &fakeLookup{}
	sink := &memorySink{}
	svc := NewService(client, zaptest.NewLogger(t), WithSink(sink), WithConcurrency(4))

	jobs := []Job{
		{Kind: KindPostcode, Value: "X33 2KPH"},
		{Kind: KindEcad, Value: "1701828123"},
		{Kind: KindPostcode, Value: "BAD"},
		{Kind: "street", Value: "Main Street"},
	}
	metrics, results := svc.Run(context.Background(), jobs)

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job)
		assert.NotEqual(t, [16]byte{}, [16]byte(r.ID))
	}
	assert.Equal(t, map[string]any{"postcode": "X33 2KPH"}, results[0].Data)
	assert.Equal(t, map[string]any{"ecadId": "1701828123"}, results[1].Data)

	apiErr, ok := eircode.AsAPIError(results[2].Err)
	require.True(t, ok)
	assert.Equal(t, 7, apiErr.Code)
	assert.NotNil(t, results[2].Data)

	assert.ErrorContains(t, results[3].Err, "unknown job kind")

	assert.Equal(t, 2, metrics.Succeeded)
	assert.Equal(t, 2, metrics.Failed)
	assert.Equal(t, 4, metrics.Total())
	assert.Equal(t, 0, metrics.SinkFailed)
	assert.Len(t, sink.saved, 4)
}

func TestRunBoundsConcurrency(t *testing.T) {
	client := &fakeLookup{delay: 10 * time.Millisecond}
	svc := NewService(client, zaptest.NewLogger(t), WithConcurrency(2))

	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = Job{Kind: KindPostcode, Value: "X33 2KPH"}
	}
	metrics, _ := svc.Run(context.Background(), jobs)

	assert.Equal(t, 10, metrics.Succeeded)
	assert.LessOrEqual(t, client.maxInFlight.Load(), int32(2))
}

func TestRunCountsSinkFailures(t *testing.T) {
	sink := &memorySink{failFor: "A86 VC04"}
	svc := NewService(&fakeLookup{}, zaptest.NewLogger(t), WithSink(sink))

	metrics, results := svc.Run(context.Background(), []Job{
		{Kind: KindPostcode, Value: "X33 2KPH"},
		{Kind: KindPostcode, Value: "A86 VC04"},
	})

	assert.Equal(t, 2, metrics.Succeeded)
	assert.Equal(t, 1, metrics.SinkFailed)
	assert.NoError(t, results[1].Err)
	assert.Len(t, sink.saved, 1)
}

func TestRunRateLimiterHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(&fakeLookup{}, zaptest.NewLogger(t), WithRate(1, 1))
	metrics, results := svc.Run(ctx, []Job{{Kind: KindPostcode, Value: "X33 2KPH"}})

	assert.Equal(t, 1, metrics.Failed)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
