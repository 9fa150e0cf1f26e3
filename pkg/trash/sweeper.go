package trash

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sweeper periodically hard-deletes trashed records whose retention window
// has elapsed. One sweep runs immediately on Start, then one per interval
// until Stop.
type Sweeper struct {
	service  Service
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	log.Infof("starting trash sweeper, interval %s", s.interval)
	go s.run()
}

func (s *Sweeper) run() {
	defer close(s.done)

	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	if _, err := s.service.SweepExpired(context.Background()); err != nil {
		log.Errorf("trash sweep failed: %v", err)
	}
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
	log.Info("trash sweeper stopped")
}
