package jobs

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Job runs once per tick of the executor's default schedule.
type Job interface {
	Name() string
	Run()
}

// CronJob runs on its own cron schedule.
type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs jobs on cron schedules. A job that is still running
// when its next tick fires is skipped for that tick.
type TaskExecutor struct {
	cron            *cron.Cron
	jobs            []Job
	cronJobs        []CronJob
	runningJobs     mapset.Set[string]
	runningCronJobs mapset.Set[string]
	muJobs          sync.Mutex
	muCronJobs      sync.Mutex
}

func NewTaskExecutor(jobs []Job, cronJobs []CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:            cron.New(),
		jobs:            jobs,
		cronJobs:        cronJobs,
		runningCronJobs: mapset.NewSet[string](),
		runningJobs:     mapset.NewSet[string](),
	}
}

// Run schedules the jobs and starts the cron in its own goroutine.
func (t *TaskExecutor) Run() error {
	for _, job := range t.cronJobs {
		err := t.cron.AddFunc(job.Schedule(), t.guard(&t.muCronJobs, t.runningCronJobs, job))
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
		}
		logrus.Infof("scheduled %s: %s", job.Name(), job.Schedule())
	}

	for _, job := range t.jobs {
		if err := t.cron.AddFunc("@every 1s", t.guard(&t.muJobs, t.runningJobs, job)); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
		}
	}

	t.cron.Start()

	return nil
}

// guard wraps job so that only one run of it is active at a time.
func (t *TaskExecutor) guard(mu *sync.Mutex, running mapset.Set[string], job Job) func() {
	return func() {
		mu.Lock()
		if running.Contains(job.Name()) {
			mu.Unlock()
			logrus.Warnf("%s is already running", job.Name())
			return
		}
		running.Add(job.Name())
		mu.Unlock()

		defer func() {
			mu.Lock()
			defer mu.Unlock()
			running.Remove(job.Name())
		}()

		job.Run()
	}
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
}
