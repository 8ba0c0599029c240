package questions

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marilove.ru/question-bot/internal/common"
	"marilove.ru/question-bot/internal/db/postgres"
)

// newTestRepository подключается к TEST_DATABASE_URL и накатывает миграции.
// Без переменной тест пропускается.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, postgres.Migrate(ctx, pool))

	return NewRepository(pool)
}

// createQuestion сохраняет pending-вопрос и удаляет его после теста.
func createQuestion(t *testing.T, repo *Repository, text string, createdAt time.Time) *Question {
	t.Helper()
	q := &Question{ID: NewID(), Text: text, Status: StatusPending, CreatedAt: createdAt}
	require.NoError(t, repo.Create(context.Background(), q))
	t.Cleanup(func() {
		_, _ = repo.Delete(context.Background(), q.ID)
	})
	return q
}

func TestRepositoryDecideOnlyOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	q := createQuestion(t, repo, "вопрос для БД", time.Now().UTC())

	at := time.Now().UTC().Truncate(time.Microsecond)
	ok, err := repo.Decide(ctx, q.ID, StatusApproved, 111, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Decide(ctx, q.ID, StatusRejected, 222, at)
	require.NoError(t, err)
	assert.False(t, ok, "второе решение не должно пройти")

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.Equal(t, int64(111), *got.DecidedBy)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, at.Equal(*got.DecidedAt))

	ok, err = repo.Decide(ctx, "нет-такого", StatusApproved, 111, at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryConcurrentDecide(t *testing.T) {
	repo := newTestRepository(t)
	q := createQuestion(t, repo, "гонка админов", time.Now().UTC())

	const admins = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func(adminID int64) {
			defer wg.Done()
			ok, err := repo.Decide(context.Background(), q.ID, StatusApproved, adminID, time.Now().UTC())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestRepositoryAttachMedia(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	pending := createQuestion(t, repo, "ещё без решения", time.Now().UTC())
	approved := createQuestion(t, repo, "принятый", time.Now().UTC())

	ok, err := repo.AttachMedia(ctx, pending.ID, "note-1")
	require.NoError(t, err)
	assert.False(t, ok, "к pending-вопросу ответ не привязывается")

	_, err = repo.Decide(ctx, approved.ID, StatusApproved, 111, time.Now().UTC())
	require.NoError(t, err)

	ok, err = repo.AttachMedia(ctx, approved.ID, "note-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AttachMedia(ctx, approved.ID, "note-2")
	require.NoError(t, err)
	assert.False(t, ok, "первый ответ не перезаписывается")

	got, err := repo.GetByID(ctx, approved.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MediaRef)
	assert.Equal(t, "note-1", *got.MediaRef)

	require.NoError(t, repo.MarkPublished(ctx, approved.ID, time.Now().UTC()))
	got, err = repo.GetByID(ctx, approved.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.PublishedAt)
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.GetByID(context.Background(), NewID())
	assert.True(t, errors.Is(err, common.ErrQuestionNotFound))
}

func TestRepositoryListAndNotifications(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	old := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

	stale := createQuestion(t, repo, "давний принятый", old)
	_, err := repo.Decide(ctx, stale.ID, StatusApproved, 111, old.Add(time.Hour))
	require.NoError(t, err)

	list, err := repo.List(ctx, Filter{
		Status:        StatusApproved,
		WithoutMedia:  true,
		DecidedBefore: old.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, stale.ID, list[0].ID)

	require.NoError(t, repo.AddNotification(ctx, Notification{QuestionID: stale.ID, MessageRef: MessageRef{ChatID: 222, MessageID: 2}}))
	require.NoError(t, repo.AddNotification(ctx, Notification{QuestionID: stale.ID, MessageRef: MessageRef{ChatID: 111, MessageID: 1}}))
	require.NoError(t, repo.AddNotification(ctx, Notification{QuestionID: stale.ID, MessageRef: MessageRef{ChatID: 111, MessageID: 1}}))

	notes, err := repo.ListNotifications(ctx, stale.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(111), notes[0].ChatID)
}

func TestRepositoryDeleteRejectedBefore(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	old := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)

	rejected := createQuestion(t, repo, "спам", old)
	approved := createQuestion(t, repo, "нормальный", old)
	_, err := repo.Decide(ctx, rejected.ID, StatusRejected, 111, old)
	require.NoError(t, err)
	_, err = repo.Decide(ctx, approved.ID, StatusApproved, 111, old)
	require.NoError(t, err)
	require.NoError(t, repo.AddNotification(ctx, Notification{QuestionID: rejected.ID, MessageRef: MessageRef{ChatID: 111, MessageID: 5}}))

	before, err := repo.Stats(ctx)
	require.NoError(t, err)

	n, err := repo.DeleteRejectedBefore(ctx, old.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	after, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Rejected-1, after.Rejected)
	assert.Equal(t, before.Approved, after.Approved)

	_, err = repo.GetByID(ctx, rejected.ID)
	assert.True(t, errors.Is(err, common.ErrQuestionNotFound))
	notes, err := repo.ListNotifications(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Empty(t, notes, "уведомления удаляются каскадом")
}
