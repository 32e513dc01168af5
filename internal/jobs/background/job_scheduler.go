package background

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"storefront/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

const LowStockJobName = "low-stock-report"

// JobScheduler runs the periodic read-only maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    *jobs.InventoryAlertService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler registers the low-stock report to run every lowStockInterval
func NewJobScheduler(alerts *jobs.InventoryAlertService, lowStockInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.AddJob(LowStockJobName, lowStockInterval, js.alerts.ScheduledLowStockCheck, context.Background()); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs to finish
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// AddJob schedules taskFn every interval. A run still in progress when the
// next one is due causes that run to be skipped.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	js.jobs[name] = job
	return nil
}

func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// RunNow triggers a registered job immediately, outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, exists := js.jobs[name]
	js.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}
	return job.RunNow()
}

// JobNames lists registered jobs in name order
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
