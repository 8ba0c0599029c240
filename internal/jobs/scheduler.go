// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасное напоминание о принятых
// вопросах без ответа и ночную очистку отклонённых.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Расписания задач (в часовом поясе планировщика).
const (
	RemindSpec = "0 * * * *"
	PurgeSpec  = "0 3 * * *"
)

// jobTimeout: сколько может идти одна задача.
const jobTimeout = 5 * time.Minute

// Maintainer: обслуживание вопросов (questions.Service).
type Maintainer interface {
	RemindStale(ctx context.Context) (int, error)
	PurgeRejected(ctx context.Context) (int64, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron       *cron.Cron
	maintainer Maintainer
	location   *time.Location
}

// NewScheduler создаёт планировщик в часовом поясе timezone.
// Если пояс не загрузился, используется MSK (UTC+3).
func NewScheduler(maintainer Maintainer, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC+3", timezone)
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		maintainer: maintainer,
		location:   loc,
	}
}

// Start регистрирует задачи и запускает cron.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(RemindSpec, func() { s.remindStale(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(PurgeSpec, func() { s.purgeRejected(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("location", s.location.String()).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт выполняющиеся задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

func (s *Scheduler) remindStale(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	log.Debug("[CRON] Проверка вопросов без ответа")
	if _, err := s.maintainer.RemindStale(ctx); err != nil {
		log.WithError(err).Error("[CRON] Ошибка напоминания")
	}
}

func (s *Scheduler) purgeRejected(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	log.Info("[CRON] Очистка отклонённых вопросов")
	if _, err := s.maintainer.PurgeRejected(ctx); err != nil {
		log.WithError(err).Error("[CRON] Ошибка очистки")
	}
}
