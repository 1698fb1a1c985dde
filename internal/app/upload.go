package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/feedupload/internal/console"
	"github.com/dmitrijs2005/feedupload/internal/discovery"
	"github.com/dmitrijs2005/feedupload/internal/events"
	"github.com/dmitrijs2005/feedupload/internal/pipeline"
)

// Upload runs the pipeline over the configured folder. The worker and the
// console sink run concurrently and share only the event queue; the
// metrics endpoint, when configured, lives as long as the worker.
func (a *App) Upload(ctx context.Context) (pipeline.Summary, error) {
	q := events.NewQueue()
	sink := console.NewSink(q, a.out, a.sinkOpts...)

	var disc pipeline.Discoverer = discovery.New()
	recorders := []pipeline.Recorder{a.metrics}

	var jr *journalRecorder
	if a.journal != nil {
		jr = newJournalRecorder(a.journal, a.logger)
		disc = jr.wrap(disc)
		recorders = append(recorders, jr)
	}

	orch := pipeline.New(disc, a.feed, a.engine, q,
		pipeline.WithLogger(a.logger.With("component", "pipeline")),
		pipeline.WithRecorders(recorders...),
		pipeline.WithSettleDelay(a.config.SettleDelay),
	)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var sum pipeline.Summary
	g.Go(func() error {
		defer q.Close()
		defer stop()

		var err error
		sum, err = orch.Run(gctx, a.config.Folder)
		if jr != nil {
			jr.finish(context.WithoutCancel(gctx))
		}
		return err
	})

	g.Go(func() error {
		sink.Run()
		return nil
	})

	if addr := a.config.MetricsAddr; addr != "" {
		g.Go(func() error {
			if err := a.metrics.Serve(gctx, addr, a.logger); err != nil {
				a.logger.Error(gctx, "metrics server failed", "addr", addr, "error", err)
			}
			return nil
		})
	}

	err := g.Wait()
	return sum, err
}
