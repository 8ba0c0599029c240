// Package questions реализует анонимные вопросы: приём, модерацию
// и публикацию ответа-кружочка в канал.
// models.go описывает вопрос, его статусы и типы для общения с Telegram.
package questions

import "time"

// Status: статус модерации вопроса.
type Status string

// Возможные статусы. Из approved и rejected переходов нет.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid проверяет, что статус известен.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Decision: решение модератора.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status возвращает статус, в который решение переводит вопрос.
func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Question: анонимный вопрос.
type Question struct {
	ID          string     `db:"id" json:"id"`
	Text        string     `db:"text" json:"text"`
	Status      Status     `db:"status" json:"status"`
	MediaRef    *string    `db:"media_ref" json:"media_ref,omitempty"` // file_id кружочка
	DecidedBy   *int64     `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt   *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// HasMedia: к вопросу уже прикреплён ответ.
func (q *Question) HasMedia() bool {
	return q.MediaRef != nil && *q.MediaRef != ""
}

// Filter: условия выборки списка вопросов.
type Filter struct {
	Status        Status    // пусто: любой статус
	WithoutMedia  bool      // только без прикреплённого ответа
	CreatedBefore time.Time // нулевое: без ограничения
	DecidedBefore time.Time // нулевое: без ограничения
	Limit         int       // 0: без ограничения
	NewestFirst   bool
}

// Stats: количество вопросов по статусам.
type Stats struct {
	Total    int64
	Pending  int64
	Approved int64
	Rejected int64
}

// MediaKind: тип вложения во входящем сообщении.
type MediaKind string

const (
	MediaVideoNote MediaKind = "video_note" // единственный принимаемый тип ответа
	MediaText      MediaKind = "text"
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaDocument  MediaKind = "document"
	MediaAudio     MediaKind = "audio"
	MediaVoice     MediaKind = "voice"
	MediaSticker   MediaKind = "sticker"
	MediaAnimation MediaKind = "animation"
	MediaOther     MediaKind = "other"
)

// Media: вложение, присланное администратором.
type Media struct {
	Kind   MediaKind
	FileID string
}

// Recipient: чат по ID или канал по @username.
type Recipient struct {
	ChatID   int64
	Username string
}

// ToChat: адресат по ID чата.
func ToChat(chatID int64) Recipient {
	return Recipient{ChatID: chatID}
}

// MessageRef: ссылка на отправленное сообщение.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Notification: уведомление админа о новом вопросе (с кнопками).
type Notification struct {
	QuestionID string
	MessageRef
}

// Control: inline-кнопка под сообщением.
type Control struct {
	Text string
	Data string
}

// ParseMode: режим разметки текста.
type ParseMode string

const (
	PlainText  ParseMode = ""
	MarkdownV2 ParseMode = "MarkdownV2"
)
