package trash

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingService struct {
	mu     sync.Mutex
	sweeps int
	swept  chan struct{}
}

func newCountingService() *countingService {
	return &countingService{swept: make(chan struct{}, 16)}
}

func (s *countingService) List(ctx context.Context) ([]Item, error) { return nil, nil }

func (s *countingService) EmptyTrash(ctx context.Context) error { return nil }

func (s *countingService) SweepExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	s.sweeps++
	s.mu.Unlock()
	select {
	case s.swept <- struct{}{}:
	default:
	}
	return 0, nil
}

func (s *countingService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweeps
}

func TestSweeper(t *testing.T) {
	t.Run("sweeps immediately on start", func(t *testing.T) {
		service := newCountingService()
		sweeper := NewSweeper(service, time.Hour)

		sweeper.Start()
		defer sweeper.Stop()

		select {
		case <-service.swept:
		case <-time.After(2 * time.Second):
			t.Fatal("expected an immediate sweep on start")
		}
		assert.GreaterOrEqual(t, service.count(), 1)
	})

	t.Run("keeps sweeping on the configured interval", func(t *testing.T) {
		service := newCountingService()
		sweeper := NewSweeper(service, 10*time.Millisecond)

		sweeper.Start()
		defer sweeper.Stop()

		deadline := time.After(2 * time.Second)
		for i := 0; i < 3; i++ {
			select {
			case <-service.swept:
			case <-deadline:
				t.Fatal("expected repeated sweeps")
			}
		}
		assert.GreaterOrEqual(t, service.count(), 3)
	})

	t.Run("stop halts the loop", func(t *testing.T) {
		service := newCountingService()
		sweeper := NewSweeper(service, 10*time.Millisecond)

		sweeper.Start()
		sweeper.Stop()

		countAfterStop := service.count()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, countAfterStop, service.count())
	})
}
