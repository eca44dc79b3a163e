package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec — как часто планировщик проверяет наступившие письма.
const DefaultSpec = "@every 5s"

// specParser принимает стандартные выражения с необязательными секундами
// и дескрипторы вида @every.
var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSpec проверяет валидность расписания тиков.
func ValidateSpec(spec string) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Runner запускает Tick по расписанию.
// Пересекающиеся тики пропускаются.
type Runner struct {
	spec    string
	cron    *cron.Cron
	sched   *Scheduler
	logger  *slog.Logger
	timeout time.Duration
}

// NewRunner создаёт Runner. Пустой spec заменяется на DefaultSpec.
func NewRunner(spec string, sched *Scheduler, logger *slog.Logger) (*Runner, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		spec:    spec,
		sched:   sched,
		logger:  logger,
		timeout: 30 * time.Second,
	}
	r.cron = cron.New(
		cron.WithParser(specParser),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return r, nil
}

// Spec возвращает действующее расписание.
func (r *Runner) Spec() string {
	return r.spec
}

// Run блокируется до отмены ctx, выполняя тики по расписанию.
// Перед возвратом дожидается завершения текущего тика.
func (r *Runner) Run(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.spec, func() {
		tickCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		if err := r.sched.Tick(tickCtx); err != nil {
			r.logger.Error("scheduler tick failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add tick job: %w", err)
	}

	r.logger.Info("scheduler runner started", "spec", r.spec)
	r.cron.Start()

	<-ctx.Done()

	stopped := r.cron.Stop()
	<-stopped.Done()
	r.logger.Info("scheduler runner stopped")
	return nil
}
