package producer

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jacoelho/jpq/internal/event"
	"github.com/jacoelho/jpq/internal/source"
)

// endlessArray reports `[` followed by an unbounded run of numbers.
type endlessArray struct {
	calls atomic.Int64
	limit int64 // 0 means never ends
}

func (e *endlessArray) NextToken() (source.Token, error) {
	n := e.calls.Add(1)
	if n == 1 {
		return source.Token{Kind: source.KindBeginArray}, nil
	}
	if e.limit > 0 && n > e.limit {
		return source.Token{}, io.EOF
	}
	return source.Token{Kind: source.KindNumber, Number: "1"}, nil
}

func (e *endlessArray) Location() int64 { return -1 }

// scripted reports fixed tokens and then a fixed error.
type scripted struct {
	tokens []source.Token
	err    error
	pos    int
}

func (s *scripted) NextToken() (source.Token, error) {
	if s.pos < len(s.tokens) {
		tok := s.tokens[s.pos]
		s.pos++
		return tok, nil
	}
	return source.Token{}, s.err
}

func (s *scripted) Location() int64 { return -1 }

func drain(t *testing.T, seq event.Sequence) ([]event.Event, error) {
	t.Helper()
	var out []event.Event
	for range 1_000_000 {
		ev, err := seq.Next()
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
	t.Fatal("sequence did not terminate")
	return nil, nil
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer goroutine did not exit")
	}
}

const document = `{"a":[1,"two",true,null,{"b":2.5}],"c":{}}`

func TestStream_MatchesSync(t *testing.T) {
	ctx := context.Background()

	sync := NewSync(ctx, source.NewJSONBytes([]byte(document)))
	want, err := drain(t, sync)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Sync drain error = %v, want io.EOF", err)
	}

	for _, capacity := range []int{1, 2, 64, Unbounded} {
		stream := Start(ctx, source.NewJSONBytes([]byte(document)), WithCapacity(capacity))
		got, err := drain(t, stream)
		if !errors.Is(err, io.EOF) {
			t.Fatalf("Stream(capacity=%d) drain error = %v, want io.EOF", capacity, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Stream(capacity=%d) events mismatch (-sync +stream):\n%s", capacity, diff)
		}
		waitDone(t, stream.Done())
	}

	if sync.Events() != len(want) {
		t.Errorf("Sync.Events() = %d, want %d", sync.Events(), len(want))
	}
}

func TestNew_SelectsImplementation(t *testing.T) {
	ctx := context.Background()
	if _, ok := New(ctx, source.NewJSONBytes([]byte("1"))).(*Stream); !ok {
		t.Error("New() default should return *Stream")
	}
	if _, ok := New(ctx, source.NewJSONBytes([]byte("1")), WithThreaded(false)).(*Sync); !ok {
		t.Error("New(WithThreaded(false)) should return *Sync")
	}
}

func TestStream_Backpressure(t *testing.T) {
	tok := &endlessArray{}
	const capacity = 4
	stream := Start(context.Background(), tok, WithCapacity(capacity))

	time.Sleep(50 * time.Millisecond)
	// capacity queued, one more read and blocked on push
	if got := tok.calls.Load(); got > capacity+2 {
		t.Errorf("tokenizer calls without consumer = %d, want at most %d", got, capacity+2)
	}

	for range 10 {
		if _, err := stream.Next(); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
	}
	time.Sleep(50 * time.Millisecond)
	if got := tok.calls.Load(); got > 10+capacity+2 {
		t.Errorf("tokenizer calls after 10 pulls = %d, want at most %d", got, 10+capacity+2)
	}

	stream.Close()
	waitDone(t, stream.Done())
}

func TestStream_CloseAbandonsProducer(t *testing.T) {
	tok := &endlessArray{}
	stream := Start(context.Background(), tok, WithCapacity(2))

	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	stream.Close()
	waitDone(t, stream.Done())

	calls := tok.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if after := tok.calls.Load(); after != calls {
		t.Errorf("tokenizer kept running after abandonment: %d -> %d calls", calls, after)
	}

	if _, err := stream.Next(); !errors.Is(err, ErrClosed) {
		t.Errorf("Next() after Close error = %v, want ErrClosed", err)
	}
}

func TestStream_UnreachableAbandonsProducer(t *testing.T) {
	tok := &endlessArray{}
	done := startAndDrop(t, tok)

	deadline := time.After(10 * time.Second)
	for {
		runtime.GC()
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatalf("producer still running after consumer was collected, %d tokens read", tok.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func startAndDrop(t *testing.T, tok source.Tokenizer) <-chan struct{} {
	t.Helper()
	stream := Start(context.Background(), tok, WithCapacity(1))
	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	return stream.Done()
}

func TestStream_ErrorAfterQueuedEvents(t *testing.T) {
	cause := errors.New("disk on fire")
	tok := &scripted{
		tokens: []source.Token{
			{Kind: source.KindBeginArray},
			{Kind: source.KindNumber, Number: "1"},
			{Kind: source.KindNumber, Number: "2"},
		},
		err: cause,
	}

	stream := Start(context.Background(), tok, WithCapacity(8))
	waitDone(t, stream.Done())

	got, err := drain(t, stream)
	if len(got) != 3 {
		t.Errorf("events before error = %d, want 3", len(got))
	}
	if !errors.Is(err, ErrProducerFailure) {
		t.Errorf("error = %v, want ErrProducerFailure", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want cause %v", err, cause)
	}

	if _, again := stream.Next(); !errors.Is(again, cause) {
		t.Errorf("Next() after failure error = %v, want sticky cause", again)
	}
}

func TestProducers_MalformedToken(t *testing.T) {
	newTok := func() source.Tokenizer {
		return &scripted{tokens: []source.Token{{Kind: source.Kind(42)}}, err: io.EOF}
	}
	ctx := context.Background()

	for name, p := range map[string]Producer{
		"sync":   NewSync(ctx, newTok()),
		"stream": Start(ctx, newTok()),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.Next()
			if !errors.Is(err, event.ErrMalformedToken) {
				t.Errorf("Next() error = %v, want ErrMalformedToken", err)
			}
			if !errors.Is(err, ErrProducerFailure) {
				t.Errorf("Next() error = %v, want ErrProducerFailure", err)
			}
		})
	}
}

func TestStream_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stream := Start(ctx, &endlessArray{}, WithCapacity(1))

	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	cancel()

	_, err := drain(t, stream)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrProducerFailure) {
		t.Errorf("cancellation should surface as-is, got %v", err)
	}
	waitDone(t, stream.Done())
}

func TestStream_Unbounded(t *testing.T) {
	tok := &endlessArray{limit: 10_000}
	stream := Start(context.Background(), tok, WithCapacity(Unbounded))

	// the producer runs to completion without a consumer
	waitDone(t, stream.Done())

	got, err := drain(t, stream)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("drain error = %v, want io.EOF", err)
	}
	if len(got) != 10_000 {
		t.Errorf("events = %d, want 10000", len(got))
	}
	if stream.Events() != 10_000 {
		t.Errorf("Events() = %d, want 10000", stream.Events())
	}
}

func TestStream_RateLimit(t *testing.T) {
	tok := &endlessArray{limit: 4}
	stream := Start(context.Background(), tok, WithRateLimit(50, 1))

	start := time.Now()
	if _, err := drain(t, stream); !errors.Is(err, io.EOF) {
		t.Fatalf("drain error = %v, want io.EOF", err)
	}
	// five limiter waits at 20ms spacing, the first immediate
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("rate limited drain took %v, want at least 60ms", elapsed)
	}
}

func TestSync_Close(t *testing.T) {
	s := NewSync(context.Background(), source.NewJSONBytes([]byte("[1]")))
	if _, err := s.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	s.Close()
	if _, err := s.Next(); !errors.Is(err, ErrClosed) {
		t.Errorf("Next() after Close error = %v, want ErrClosed", err)
	}
}

func TestWithCapacity(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: 1},
		{in: -5, want: 1},
		{in: 8, want: 8},
		{in: Unbounded, want: Unbounded},
	}

	for _, tt := range tests {
		o := defaultOptions()
		WithCapacity(tt.in)(&o)
		if o.capacity != tt.want {
			t.Errorf("WithCapacity(%d) capacity = %d, want %d", tt.in, o.capacity, tt.want)
		}
	}
}
