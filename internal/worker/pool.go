package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nvdecode/internal/decode"
	"nvdecode/internal/logging"
	"nvdecode/internal/probe"
)

// Pool launches one worker per URL and waits for all of them. Workers are
// fully isolated: one worker's failure is invisible to its siblings, and the
// join only completes when every worker has stopped. For live sources that
// wait is effectively unbounded.
type Pool struct {
	GPU  int
	URLs []string

	Prober          probe.Prober
	StartPipe       StartPipeFunc
	Factory         decode.Factory
	InitialReadSize int
	Logger          *slog.Logger

	// run is swapped in tests.
	run func(ctx context.Context, w *Worker) error
}

// Run blocks until every worker has terminated. The first worker error is
// returned after the join; siblings are never cancelled because of it.
func (p *Pool) Run(ctx context.Context) error {
	if len(p.URLs) == 0 {
		return fmt.Errorf("no stream urls provided")
	}

	logger := logging.NewComponentLogger(p.Logger, "pool")
	runWorker := p.run
	if runWorker == nil {
		runWorker = func(ctx context.Context, w *Worker) error {
			return w.Run(ctx)
		}
	}

	var group errgroup.Group
	for _, url := range p.URLs {
		w := &Worker{
			URL:             url,
			Tag:             uuid.NewString(),
			GPU:             p.GPU,
			Prober:          p.Prober,
			StartPipe:       p.StartPipe,
			Factory:         p.Factory,
			InitialReadSize: p.InitialReadSize,
			Logger:          p.Logger,
		}
		logger.Info("starting worker",
			logging.String(logging.FieldWorker, w.Tag),
			logging.String(logging.FieldURL, w.URL),
			logging.Int(logging.FieldGPU, w.GPU),
		)
		group.Go(func() error {
			if err := runWorker(ctx, w); err != nil {
				logger.Error("worker stopped",
					logging.String(logging.FieldWorker, w.Tag),
					logging.String(logging.FieldURL, w.URL),
					logging.Error(err),
				)
				return fmt.Errorf("worker %s: %w", w.URL, err)
			}
			logger.Info("worker finished",
				logging.String(logging.FieldWorker, w.Tag),
				logging.String(logging.FieldURL, w.URL),
			)
			return nil
		})
	}
	return group.Wait()
}
