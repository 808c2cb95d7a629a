package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// CronJob is a user callback scheduled by CronPlugin.
type CronJob func(ctx context.Context)

// CronPlugin is a calendar-schedule Plugin that supplements the Daemon's
// loop_interval ticking for work that belongs on a wall-clock schedule
// ("run at 3am") rather than every tick. It is registered into a Daemon
// the same way any other Plugin is, and its jobs run on robfig/cron's own
// goroutine, independent of the tick loop.
type CronPlugin struct {
	mu      sync.Mutex
	cron    *cron.Cron
	pending []pendingJob
	ctx     context.Context
}

type pendingJob struct {
	spec string
	job  CronJob
}

var _ Plugin = (*CronPlugin)(nil)

// NewCronPlugin constructs an empty CronPlugin. Add jobs with Schedule
// before the Daemon's Setup step runs (RegisterPlugin must happen before
// Daemon.Run); jobs added afterward take effect on the next Setup).
func NewCronPlugin() *CronPlugin {
	return &CronPlugin{cron: cron.New()}
}

// Schedule registers job to run on the standard five-field cron spec.
func (p *CronPlugin) Schedule(spec string, job CronJob) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("plugin: cron schedule %q: %w", spec, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, pendingJob{spec: spec, job: job})
	return nil
}

func (p *CronPlugin) Name() string { return "plugin.CronPlugin" }

func (p *CronPlugin) CheckEnvironment(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pj := range p.pending {
		if _, err := cron.ParseStandard(pj.spec); err != nil {
			return fmt.Errorf("plugin: cron schedule %q: %w", pj.spec, err)
		}
	}
	return nil
}

// Setup starts the cron scheduler and registers every pending job, each
// wrapped in a panic-recovery boundary so one bad job can't take down the
// scheduler goroutine.
func (p *CronPlugin) Setup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx
	for _, pj := range p.pending {
		job := pj.job
		if _, err := p.cron.AddFunc(pj.spec, func() { p.runJob(job) }); err != nil {
			return fmt.Errorf("plugin: cron add %q: %w", pj.spec, err)
		}
	}
	p.cron.Start()
	return nil
}

func (p *CronPlugin) runJob(job CronJob) {
	defer func() { _ = recover() }()
	job(p.ctx)
}

// Teardown stops the scheduler, waiting for any in-flight job to finish.
func (p *CronPlugin) Teardown(context.Context) error {
	<-p.cron.Stop().Done()
	return nil
}
