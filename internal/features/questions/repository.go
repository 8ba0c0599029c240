// Package questions: repository.go выполняет операции с таблицами
// questions и question_notifications.
package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marilove.ru/question-bot/internal/common"
)

const questionColumns = `id, text, status, media_ref, decided_by, decided_at, published_at, created_at`

// Repository работает с таблицей questions.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий вопросов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый вопрос.
func (r *Repository) Create(ctx context.Context, q *Question) error {
	query := `
		INSERT INTO questions (id, text, status, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, q.ID, q.Text, string(q.Status), q.CreatedAt); err != nil {
		return fmt.Errorf("ошибка создания вопроса: %w", err)
	}
	return nil
}

// GetByID возвращает common.ErrQuestionNotFound, если вопроса нет.
func (r *Repository) GetByID(ctx context.Context, id string) (*Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	q, err := scanQuestion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("id=%s: %w", id, common.ErrQuestionNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения вопроса (id=%s): %w", id, err)
	}
	return q, nil
}

// Decide переводит вопрос из pending в status одним условным UPDATE.
// false, если вопрос уже не pending или его нет (решение принял кто-то раньше).
func (r *Repository) Decide(ctx context.Context, id string, status Status, adminID int64, at time.Time) (bool, error) {
	query := `
		UPDATE questions
		SET status = $2, decided_by = $3, decided_at = $4
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id, string(status), adminID, at)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления статуса (id=%s): %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// AttachMedia сохраняет file_id ответа. Срабатывает только для принятого
// вопроса без ответа, поэтому выигрывает первый.
func (r *Repository) AttachMedia(ctx context.Context, id, mediaRef string) (bool, error) {
	query := `
		UPDATE questions
		SET media_ref = $2
		WHERE id = $1 AND status = 'approved' AND media_ref IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, mediaRef)
	if err != nil {
		return false, fmt.Errorf("ошибка сохранения ответа (id=%s): %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkPublished отмечает успешную публикацию в канале.
func (r *Repository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE questions SET published_at = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("ошибка отметки публикации (id=%s): %w", id, err)
	}
	return nil
}

// Delete удаляет вопрос. false: вопроса не было.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления вопроса (id=%s): %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteRejectedBefore удаляет отклонённые вопросы старше before.
func (r *Repository) DeleteRejectedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM questions WHERE status = 'rejected' AND created_at < $1`
	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки отклонённых: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List возвращает вопросы по фильтру, упорядоченные по времени создания.
func (r *Repository) List(ctx context.Context, f Filter) ([]*Question, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.WithoutMedia {
		where = append(where, "media_ref IS NULL")
	}
	if !f.CreatedBefore.IsZero() {
		args = append(args, f.CreatedBefore)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if !f.DecidedBefore.IsZero() {
		args = append(args, f.DecidedBefore)
		where = append(where, fmt.Sprintf("decided_at < $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + questionColumns + ` FROM questions`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.NewestFirst {
		sb.WriteString(" ORDER BY created_at DESC")
	} else {
		sb.WriteString(" ORDER BY created_at ASC")
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса вопросов: %w", err)
	}
	defer rows.Close()

	var out []*Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Stats считает вопросы по статусам.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM questions
	`
	var s Stats
	if err := r.db.QueryRow(ctx, query).Scan(&s.Total, &s.Pending, &s.Approved, &s.Rejected); err != nil {
		return Stats{}, fmt.Errorf("ошибка подсчёта статистики: %w", err)
	}
	return s, nil
}

// AddNotification запоминает сообщение с кнопками, отправленное админу.
func (r *Repository) AddNotification(ctx context.Context, n Notification) error {
	query := `
		INSERT INTO question_notifications (question_id, chat_id, message_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, n.QuestionID, n.ChatID, n.MessageID); err != nil {
		return fmt.Errorf("ошибка сохранения уведомления: %w", err)
	}
	return nil
}

// ListNotifications возвращает все уведомления по вопросу.
func (r *Repository) ListNotifications(ctx context.Context, questionID string) ([]Notification, error) {
	query := `
		SELECT question_id, chat_id, message_id
		FROM question_notifications
		WHERE question_id = $1
		ORDER BY chat_id
	`
	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса уведомлений: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.QuestionID, &n.ChatID, &n.MessageID); err != nil {
			return nil, fmt.Errorf("ошибка чтения уведомления: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanQuestion(row pgx.Row) (*Question, error) {
	var (
		q      Question
		status string
	)
	err := row.Scan(
		&q.ID, &q.Text, &status, &q.MediaRef,
		&q.DecidedBy, &q.DecidedAt, &q.PublishedAt, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.Status = Status(status)
	return &q, nil
}
