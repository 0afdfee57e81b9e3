package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/metrics"
)

// Job is a unit of background work run on a cron schedule.
type Job interface {
	Run() error
	Name() string
}

type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func New(log zerolog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     log.With().Str("component", "scheduler").Logger(),
		metrics: m,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// AddJob registers job under a standard cron spec or a descriptor such as
// "@hourly" or "@every 5m".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return err
	}
	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("job registered")
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("running job immediately")
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("running job")
	err := job.Run()
	result := "ok"
	if err != nil {
		result = "error"
		s.log.Error().Err(err).Str("job", job.Name()).Msg("job failed")
	} else {
		s.log.Debug().Str("job", job.Name()).Msg("job completed")
	}
	if s.metrics != nil {
		s.metrics.JobRuns.WithLabelValues(job.Name(), result).Inc()
	}
	return err
}
