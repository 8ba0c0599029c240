package questions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"marilove.ru/question-bot/internal/common"
	"marilove.ru/question-bot/internal/config"
)

// memStore: Store в памяти с теми же условными переходами, что и SQL.
type memStore struct {
	mu            sync.Mutex
	questions     map[string]*Question
	notifications map[string][]Notification
	createErr     error
}

func newMemStore() *memStore {
	return &memStore{
		questions:     make(map[string]*Question),
		notifications: make(map[string][]Notification),
	}
}

func (s *memStore) Create(_ context.Context, q *Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, fmt.Errorf("id=%s: %w", id, common.ErrQuestionNotFound)
	}
	cp := *q
	return &cp, nil
}

func (s *memStore) Decide(_ context.Context, id string, status Status, adminID int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok || q.Status != StatusPending {
		return false, nil
	}
	q.Status = status
	q.DecidedBy = &adminID
	q.DecidedAt = &at
	return true, nil
}

func (s *memStore) AttachMedia(_ context.Context, id, mediaRef string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok || q.Status != StatusApproved || q.MediaRef != nil {
		return false, nil
	}
	q.MediaRef = &mediaRef
	return true, nil
}

func (s *memStore) MarkPublished(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.questions[id]; ok {
		q.PublishedAt = &at
	}
	return nil
}

func (s *memStore) List(_ context.Context, f Filter) ([]*Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Question
	for _, q := range s.questions {
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		if f.WithoutMedia && q.MediaRef != nil {
			continue
		}
		if !f.CreatedBefore.IsZero() && !q.CreatedAt.Before(f.CreatedBefore) {
			continue
		}
		if !f.DecidedBefore.IsZero() && (q.DecidedAt == nil || !q.DecidedAt.Before(f.DecidedBefore)) {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memStore) DeleteRejectedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, q := range s.questions {
		if q.Status == StatusRejected && q.CreatedAt.Before(before) {
			delete(s.questions, id)
			delete(s.notifications, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) AddNotification(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.QuestionID] = append(s.notifications[n.QuestionID], n)
	return nil
}

func (s *memStore) ListNotifications(_ context.Context, questionID string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications[questionID]...), nil
}

func (s *memStore) get(id string) Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.questions[id]
}

// sent: одно исходящее сообщение.
type sent struct {
	To       Recipient
	Text     string
	Mode     ParseMode
	Controls []Control
	FileID   string // для кружочков
	Ref      MessageRef
}

type callbackAnswer struct {
	ID    string
	Text  string
	Alert bool
}

// recordingTransport запоминает всё отправленное.
type recordingTransport struct {
	mu        sync.Mutex
	nextID    int
	messages  []sent
	removed   []MessageRef
	callbacks []callbackAnswer

	failTextTo      map[int64]bool // SendText в эти чаты падает
	failChannelText bool
	failVideoNote   bool
	failMarkdown    bool // SendWithControls с MarkdownV2 падает
}

var errSendFailed = errors.New("telegram недоступен")

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{failTextTo: make(map[int64]bool)}
}

func (t *recordingTransport) record(m sent) MessageRef {
	t.nextID++
	m.Ref = MessageRef{ChatID: m.To.ChatID, MessageID: t.nextID}
	t.messages = append(t.messages, m)
	return m.Ref
}

func (t *recordingTransport) SendText(_ context.Context, to Recipient, text string, mode ParseMode) (MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failTextTo[to.ChatID] && to.Username == "" {
		return MessageRef{}, errSendFailed
	}
	if t.failChannelText && to.Username != "" {
		return MessageRef{}, errSendFailed
	}
	return t.record(sent{To: to, Text: text, Mode: mode}), nil
}

func (t *recordingTransport) SendWithControls(_ context.Context, to Recipient, text string, mode ParseMode, controls []Control) (MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failTextTo[to.ChatID] {
		return MessageRef{}, errSendFailed
	}
	if t.failMarkdown && mode == MarkdownV2 {
		return MessageRef{}, errSendFailed
	}
	return t.record(sent{To: to, Text: text, Mode: mode, Controls: controls}), nil
}

func (t *recordingTransport) RemoveControls(_ context.Context, ref MessageRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removed = append(t.removed, ref)
	return nil
}

func (t *recordingTransport) SendVideoNote(_ context.Context, to Recipient, fileID string) (MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failVideoNote {
		return MessageRef{}, errSendFailed
	}
	return t.record(sent{To: to, FileID: fileID}), nil
}

func (t *recordingTransport) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callbacks = append(t.callbacks, callbackAnswer{ID: callbackID, Text: text, Alert: alert})
	return nil
}

// to возвращает сообщения, отправленные в чат (или в канал по username).
func (t *recordingTransport) to(r Recipient) []sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []sent
	for _, m := range t.messages {
		if m.To == r {
			out = append(out, m)
		}
	}
	return out
}

func (t *recordingTransport) lastCallback() callbackAnswer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.callbacks) == 0 {
		return callbackAnswer{}
	}
	return t.callbacks[len(t.callbacks)-1]
}

const (
	adminA  int64 = 111
	adminB  int64 = 222
	userID  int64 = 5001
	channel       = "@marilove_channel"
)

func testConfig() *config.Config {
	return &config.Config{
		AdminIDs:              []int64{adminA, adminB},
		ChannelUsername:       channel,
		ChannelLink:           channel,
		MaxQuestionLength:     1000,
		StaleApprovalAfter:    24 * time.Hour,
		RejectedRetentionDays: 30,
	}
}
