package questions

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// RemindStale рассылает админам принятые вопросы, которые слишком долго
// ждут кружочка. Вопросы не истекают и не переназначаются сами:
// любой админ может взять вопрос через /answer.
func (s *Service) RemindStale(ctx context.Context) (int, error) {
	if s.cfg.StaleApprovalAfter <= 0 {
		return 0, nil
	}

	stale, err := s.store.List(ctx, Filter{
		Status:        StatusApproved,
		WithoutMedia:  true,
		DecidedBefore: s.now().Add(-s.cfg.StaleApprovalAfter),
	})
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	parts := staleReminderText(stale)
	for _, adminID := range s.cfg.AdminIDs {
		for _, text := range parts {
			if _, err := s.transport.SendText(ctx, ToChat(adminID), text, PlainText); err != nil {
				log.WithError(err).WithField("admin_id", adminID).Warn("Не удалось отправить напоминание")
				break
			}
		}
	}

	log.WithField("count", len(stale)).Info("Напоминание о вопросах без ответа отправлено")
	return len(stale), nil
}

// PurgeRejected удаляет отклонённые вопросы старше REJECTED_RETENTION_DAYS.
func (s *Service) PurgeRejected(ctx context.Context) (int64, error) {
	days := s.cfg.RejectedRetentionDays
	if days <= 0 {
		return 0, nil
	}

	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	n, err := s.store.DeleteRejectedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.WithFields(log.Fields{
			"deleted": n,
			"days":    days,
		}).Info("Удалены старые отклонённые вопросы")
	}
	return n, nil
}
