// Package maintenance: обслуживание базы вопросов из командной строки:
// статистика, просмотр, удаление, очистка, экспорт и резервные копии.
package maintenance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"marilove.ru/question-bot/internal/common"
	"marilove.ru/question-bot/internal/features/questions"
)

// DefaultListLimit: сколько вопросов показывает list без --limit.
const DefaultListLimit = 10

const (
	backupPrefix     = "questions_backup_"
	backupExt        = ".json"
	backupTimeLayout = "20060102_150405"
	rule             = "================================================================================"
	thinRule         = "--------------------------------------------------------------------------------"
)

// Store: то, что нужно утилитам от репозитория вопросов.
type Store interface {
	Stats(ctx context.Context) (questions.Stats, error)
	List(ctx context.Context, f questions.Filter) ([]*questions.Question, error)
	GetByID(ctx context.Context, id string) (*questions.Question, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteRejectedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Tools выполняет операции обслуживания.
type Tools struct {
	store Store
	now   func() time.Time
}

// New создаёт набор утилит.
func New(store Store) *Tools {
	return &Tools{store: store, now: time.Now}
}

// WriteStats печатает количество вопросов по статусам.
func (t *Tools) WriteStats(ctx context.Context, w io.Writer) error {
	s, err := t.store.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, rule[:50])
	fmt.Fprintln(w, "📊 Статистика вопросов")
	fmt.Fprintln(w, rule[:50])
	fmt.Fprintf(w, "Всего вопросов:      %d\n", s.Total)
	fmt.Fprintf(w, "Ожидают модерации:   %d\n", s.Pending)
	fmt.Fprintf(w, "Принято:             %d\n", s.Approved)
	fmt.Fprintf(w, "Отклонено:           %d\n", s.Rejected)
	fmt.Fprintln(w, rule[:50])
	return nil
}

// WriteList печатает последние вопросы, новые первыми.
func (t *Tools) WriteList(ctx context.Context, w io.Writer, status questions.Status, limit int) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("неизвестный статус %q (pending, approved, rejected)", status)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	list, err := t.store.List(ctx, questions.Filter{Status: status, Limit: limit, NewestFirst: true})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "❌ Вопросы не найдены")
		return nil
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "📋 Список вопросов (показаны последние %d)\n", limit)
	if status != "" {
		fmt.Fprintf(w, "Статус: %s\n", status)
	}
	fmt.Fprintln(w, rule)

	for _, q := range list {
		fmt.Fprintf(w, "\nID: %s\n", q.ID)
		fmt.Fprintf(w, "Дата: %s\n", q.CreatedAt.In(common.MoscowLocation()).Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Статус: %s\n", q.Status)
		fmt.Fprintf(w, "Вопрос: %s\n", common.Truncate(q.Text, 100))
		if q.HasMedia() {
			fmt.Fprintf(w, "Видео ID: %s\n", common.Truncate(*q.MediaRef, 30))
		}
		fmt.Fprintln(w, thinRule)
	}
	return nil
}

// DeleteQuestion показывает вопрос и удаляет его, если confirm вернул true.
// Возвращает true, если вопрос удалён.
func (t *Tools) DeleteQuestion(ctx context.Context, w io.Writer, id string, confirm func() bool) (bool, error) {
	q, err := t.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	fmt.Fprintf(w, "ID: %s\nТекст: %s\nСтатус: %s\n", q.ID, q.Text, q.Status)
	if !confirm() {
		fmt.Fprintln(w, "❌ Удаление отменено")
		return false, nil
	}

	deleted, err := t.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		log.WithField("question_id", id).Info("Вопрос удалён вручную")
		fmt.Fprintln(w, "✅ Вопрос удалён")
	}
	return deleted, nil
}

// ClearRejected удаляет отклонённые вопросы старше days дней.
func (t *Tools) ClearRejected(ctx context.Context, w io.Writer, days int, confirm func(count int) bool) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("количество дней не может быть отрицательным")
	}
	cutoff := t.now().Add(-time.Duration(days) * 24 * time.Hour)

	old, err := t.store.List(ctx, questions.Filter{Status: questions.StatusRejected, CreatedBefore: cutoff})
	if err != nil {
		return 0, err
	}
	if len(old) == 0 {
		fmt.Fprintf(w, "❌ Нет отклонённых вопросов старше %d дней\n", days)
		return 0, nil
	}

	fmt.Fprintf(w, "⚠️  Найдено %s старше %d дней\n", common.FormatQuestions(int64(len(old))), days)
	if !confirm(len(old)) {
		fmt.Fprintln(w, "❌ Удаление отменено")
		return 0, nil
	}

	n, err := t.store.DeleteRejectedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(w, "✅ Удалено %s\n", common.FormatQuestions(n))
	return n, nil
}

// Export пишет все вопросы в текстовом виде, старые первыми.
func (t *Tools) Export(ctx context.Context, w io.Writer) (int, error) {
	list, err := t.store.List(ctx, questions.Filter{})
	if err != nil {
		return 0, err
	}

	fmt.Fprintln(w, "ЭКСПОРТ ВОПРОСОВ")
	fmt.Fprint(w, rule+"\n\n")
	for _, q := range list {
		fmt.Fprintf(w, "ID: %s\n", q.ID)
		fmt.Fprintf(w, "Дата: %s\n", q.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(w, "Статус: %s\n", q.Status)
		fmt.Fprintf(w, "Вопрос: %s\n", q.Text)
		if q.HasMedia() {
			fmt.Fprintf(w, "Видео ID: %s\n", *q.MediaRef)
		}
		fmt.Fprint(w, "\n"+thinRule+"\n\n")
	}
	return len(list), nil
}

// Backup: содержимое файла резервной копии.
type Backup struct {
	CreatedAt time.Time             `json:"created_at"`
	Questions []*questions.Question `json:"questions"`
}

// CreateBackup сохраняет все вопросы в dir/questions_backup_YYYYmmdd_HHMMSS.json.
// Файл сначала пишется во временный и потом переименовывается.
func (t *Tools) CreateBackup(ctx context.Context, dir string) (string, int, error) {
	list, err := t.store.List(ctx, questions.Filter{})
	if err != nil {
		return "", 0, err
	}
	if list == nil {
		list = []*questions.Question{}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("не удалось создать %s: %w", dir, err)
	}

	now := t.now()
	path := filepath.Join(dir, backupPrefix+now.Format(backupTimeLayout)+backupExt)

	tmp, err := os.CreateTemp(dir, ".backup-*")
	if err != nil {
		return "", 0, fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Backup{CreatedAt: now.UTC(), Questions: list}); err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("ошибка записи копии: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("ошибка записи копии: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("ошибка сохранения копии: %w", err)
	}

	log.WithFields(log.Fields{
		"path":      path,
		"questions": len(list),
	}).Info("Резервная копия создана")
	return path, len(list), nil
}

// BackupFile: файл резервной копии на диске.
type BackupFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ListBackups возвращает резервные копии в dir, новые первыми.
// Если каталога нет: пустой список.
func ListBackups(dir string) ([]BackupFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []BackupFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, BackupFile{Name: name, Size: info.Size(), ModTime: info.ModTime()})
	}

	// в имени метка времени, поэтому лексикографический порядок: хронологический
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// ReadBackup читает файл резервной копии.
func ReadBackup(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("повреждённая копия %s: %w", path, err)
	}
	return &b, nil
}

// VerifyBackups читает каждую копию и печатает, сколько в ней вопросов.
// Возвращает число копий, которые не удалось прочитать.
func VerifyBackups(w io.Writer, dir string, files []BackupFile) int {
	bad := 0
	for _, f := range files {
		b, err := ReadBackup(filepath.Join(dir, f.Name))
		if err != nil {
			log.WithError(err).WithField("file", f.Name).Warn("Резервная копия не читается")
			fmt.Fprintf(w, "  ❌ %s: %v\n", f.Name, err)
			bad++
			continue
		}
		fmt.Fprintf(w, "  ✅ %s: %s от %s\n",
			f.Name, common.FormatQuestions(int64(len(b.Questions))), common.FormatDateTime(b.CreatedAt))
	}
	return bad
}
