package question

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PrefetchWorker warms the bank cache for upcoming evaluations so session
// creation stays off the generator's latency path. On fetch failure it
// enqueues an async generation request instead.
type PrefetchWorker struct {
	service   *Service
	generator ContentGenerator
	queue     <-chan BankRequest
	logger    zerolog.Logger
	timeout   time.Duration
	shutdownC chan struct{}
}

func NewPrefetchWorker(service *Service, generator ContentGenerator, queue <-chan BankRequest, logger zerolog.Logger, timeout time.Duration) *PrefetchWorker {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &PrefetchWorker{
		service:   service,
		generator: generator,
		queue:     queue,
		logger:    logger.With().Str("component", "bank_prefetch").Logger(),
		timeout:   timeout,
		shutdownC: make(chan struct{}),
	}
}

func (w *PrefetchWorker) Run() {
	for {
		select {
		case <-w.shutdownC:
			w.logger.Info().Msg("bank prefetch stopping")
			return
		case req := <-w.queue:
			w.handle(req)
		}
	}
}

func (w *PrefetchWorker) handle(req BankRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if _, err := w.service.FetchBank(ctx, req); err != nil {
		w.logger.Warn().Err(err).Strs("oa_codes", req.OACodes).Msg("prefetch failed")
		if w.generator != nil {
			if enqueueErr := w.generator.EnqueueBank(ctx, req); enqueueErr != nil {
				w.logger.Error().Err(enqueueErr).Msg("generator enqueue failed")
			}
		}
	}
}

func (w *PrefetchWorker) Stop() {
	close(w.shutdownC)
}
