package postgres

// migrationLockKey: ключ advisory lock на время миграции.
const migrationLockKey int64 = 7_215_001

type migration struct {
	version int
	name    string
	sql     string
}

// SQL-миграции встроены в код для упрощения деплоя.
// Порядок в срезе: порядок применения; версии не переиспользуются.
var migrations = []migration{
	{1, "questions", migration001Questions},
	{2, "question_notifications", migration002Notifications},
	{3, "questions_indexes", migration003Indexes},
}

var migration001Questions = `
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'approved', 'rejected')),
    media_ref TEXT,
    decided_by BIGINT,
    decided_at TIMESTAMPTZ,
    published_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (media_ref IS NULL OR status = 'approved'),
    CHECK ((status = 'pending') = (decided_at IS NULL))
);
`

var migration002Notifications = `
CREATE TABLE IF NOT EXISTS question_notifications (
    question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    chat_id BIGINT NOT NULL,
    message_id INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (question_id, chat_id, message_id)
);
`

var migration003Indexes = `
CREATE INDEX IF NOT EXISTS idx_questions_status_created ON questions(status, created_at);
CREATE INDEX IF NOT EXISTS idx_questions_unanswered ON questions(decided_at)
    WHERE status = 'approved' AND media_ref IS NULL;
`
