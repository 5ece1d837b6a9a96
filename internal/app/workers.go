package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/service/survey"
	"github.com/Alijeyrad/myvoice_backend/pkg/constants"
	"github.com/Alijeyrad/myvoice_backend/pkg/events"
)

// WorkerModule registers the survey workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Bus       *events.Bus
	Cfg       *config.Config
	SurveySvc survey.Service
	Log       *slog.Logger
}

func RegisterWorkers(p WorkerParams) {
	log := p.Log.With("component", "workers")
	ctx, cancel := context.WithCancel(context.Background())
	var (
		wg   sync.WaitGroup
		subs []*nats.Subscription
	)

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sub, err := startVisitWorker(p.Bus, p.SurveySvc, log)
			if err != nil {
				cancel()
				return err
			}
			subs = append(subs, sub)

			interval := time.Duration(p.Cfg.Survey.PollIntervalSeconds) * time.Second
			wg.Add(1)
			go func() {
				defer wg.Done()
				runSurveyTicker(ctx, p.SurveySvc, interval, log)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			cancel()
			wg.Wait()
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// visit_worker
// ---------------------------------------------------------------------------

// startVisitWorker welcomes new visits as soon as they are registered instead
// of waiting for the next tick.
func startVisitWorker(bus *events.Bus, svc survey.Service, log *slog.Logger) (*nats.Subscription, error) {
	sub, err := events.Subscribe(bus, events.VisitRegistered, constants.AppName+"-survey", log,
		func(ctx context.Context, ev events.VisitRegisteredEvent) error {
			n, err := svc.HandleNewVisits(ctx, time.Now())
			if err != nil {
				return err
			}
			log.Debug("visit_worker: handled new visits", "visit_id", ev.VisitID, "scheduled", n)
			return nil
		})
	if err != nil {
		log.Error("visit_worker: subscribe visit.registered failed", "err", err)
		return nil, err
	}
	log.Info("visit_worker: started")
	return sub, nil
}

// ---------------------------------------------------------------------------
// survey_ticker
// ---------------------------------------------------------------------------

func runSurveyTicker(ctx context.Context, svc survey.Service, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	log.Info("survey_ticker: started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			SurveyPass(ctx, svc, now, log)
		}
	}
}

// SurveyPass welcomes new visits, then starts every survey that is due.
func SurveyPass(ctx context.Context, svc survey.Service, now time.Time, log *slog.Logger) (scheduled, started int) {
	scheduled, err := svc.HandleNewVisits(ctx, now)
	if err != nil {
		log.Error("survey_ticker: handling new visits failed", "err", err)
	}
	started, err = svc.DispatchDue(ctx, now)
	if err != nil {
		log.Error("survey_ticker: dispatch failed", "err", err)
	}
	if scheduled > 0 || started > 0 {
		log.Info("survey_ticker: pass complete", "scheduled", scheduled, "started", started)
	}
	return scheduled, started
}
