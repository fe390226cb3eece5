package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval - интервал между запусками очистки.
const DefaultInterval = 24 * time.Hour

// Scheduler запускает очистку при старте и далее с фиксированным интервалом.
type Scheduler struct {
	sweeper  *Sweeper
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewScheduler создает планировщик очистки.
func NewScheduler(s *Sweeper, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	logger = logger.Named("SweepScheduler")
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{logger.Sugar()}),
		cron.SkipIfStillRunning(cronLogger{logger.Sugar()}),
	))
	return &Scheduler{sweeper: s, interval: interval, cron: c, logger: logger}, nil
}

// Start выполняет первую очистку синхронно и запускает периодические очистки.
// Ошибки очистки не останавливают расписание.
func (sc *Scheduler) Start(ctx context.Context) error {
	_, _ = sc.sweeper.Sweep(ctx)

	spec := fmt.Sprintf("@every %s", sc.interval)
	if _, err := sc.cron.AddFunc(spec, func() {
		_, _ = sc.sweeper.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("ошибка регистрации задания очистки: %w", err)
	}
	sc.cron.Start()
	sc.logger.Info("Планировщик очистки запущен", zap.Duration("interval", sc.interval))
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущей очистки.
func (sc *Scheduler) Stop() {
	<-sc.cron.Stop().Done()
	sc.logger.Info("Планировщик очистки остановлен")
}

// cronLogger адаптирует zap к интерфейсу cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Кастомные ошибки планировщика.
var (
	ErrInvalidInterval = errors.New("интервал очистки должен быть положительным")
)
