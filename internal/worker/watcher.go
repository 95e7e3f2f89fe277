package worker

import (
	"context"
	"sync"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/dkhamitov/notify-gateway/internal/rabbitmq/queue"
)

//go:generate mockgen -source=watcher.go -destination=../mocks/worker/mock.go -package=mocks

type statusConsumer interface {
	ConsumeStatus(ctx context.Context, out chan<- queue.StatusReport, strategy retry.Strategy) error
	ConsumeDeadLetters(ctx context.Context, out chan<- queue.NotificationMessage, strategy retry.Strategy) error
}

type reportHandler interface {
	HandleReport(ctx context.Context, report queue.StatusReport, strategy retry.Strategy)
	HandleDeadLetter(ctx context.Context, msg queue.NotificationMessage, strategy retry.Strategy)
}

// Watcher drains the status-report queue and the DLQ with a pool of worker
// goroutines, feeding every signal through the status handler.
type Watcher struct {
	queue   statusConsumer
	handler reportHandler
}

func NewWatcher(q statusConsumer, h reportHandler) *Watcher {
	return &Watcher{
		queue:   q,
		handler: h,
	}
}

func (w *Watcher) Run(ctx context.Context, strategy retry.Strategy, workerCount int) {
	var wg sync.WaitGroup
	reports := make(chan queue.StatusReport, workerCount*10)
	deadLetters := make(chan queue.NotificationMessage, workerCount*10)

	go func() {
		if err := w.queue.ConsumeStatus(ctx, reports, strategy); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to consume status reports")
		}
	}()

	go func() {
		if err := w.queue.ConsumeDeadLetters(ctx, deadLetters, strategy); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to consume dead letters")
		}
	}()

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func(id int) {
			defer wg.Done()

			zlog.Logger.Printf("status-watcher-%d started", id)

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Printf("status-watcher-%d shutting down", id)
					return
				case report, ok := <-reports:
					if !ok {
						zlog.Logger.Printf("status-watcher-%d report channel closed, shutting down", id)
						return
					}

					w.handler.HandleReport(ctx, report, strategy)
				case msg, ok := <-deadLetters:
					if !ok {
						zlog.Logger.Printf("status-watcher-%d dead-letter channel closed, shutting down", id)
						return
					}

					w.handler.HandleDeadLetter(ctx, msg, strategy)
				}
			}
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
	zlog.Logger.Print("status watcher stopped")
}
