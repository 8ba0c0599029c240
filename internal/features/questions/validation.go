// Package questions: validation.go проверяет текст вопроса,
// экранирует его для MarkdownV2 и генерирует ID.
package questions

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"marilove.ru/question-bot/internal/common"
)

// DefaultMaxLength: максимальная длина вопроса по умолчанию.
const DefaultMaxLength = 1000

// ValidationError: ошибка, которую пользователь может исправить сам.
// Unwrap возвращает common.ErrQuestionEmpty или common.ErrQuestionTooLong.
type ValidationError struct {
	Err    error
	Max    int
	Length int
}

func (e *ValidationError) Error() string {
	if e.Err == common.ErrQuestionTooLong {
		return fmt.Sprintf("Вопрос слишком длинный. Максимум %d символов", e.Max)
	}
	return "Вопрос не может быть пустым"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate проверяет текст вопроса. Длина считается в символах, не в байтах.
// maxLength <= 0 означает DefaultMaxLength.
func Validate(text string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Err: common.ErrQuestionEmpty, Max: maxLength}
	}
	if n := utf8.RuneCountInString(text); n > maxLength {
		return &ValidationError{Err: common.ErrQuestionTooLong, Max: maxLength, Length: n}
	}
	return nil
}

// markdownReserved: символы, которые MarkdownV2 требует экранировать.
const markdownReserved = "_*[]()~`>#+-=|{}.!"

// IsMarkdownReserved сообщает, нужно ли экранировать символ.
func IsMarkdownReserved(r rune) bool {
	return strings.ContainsRune(markdownReserved, r)
}

// EscapeMarkdown экранирует зарезервированные символы обратным слэшем.
// Исходная строка проходится один раз, поэтому вставленные слэши
// повторно не экранируются.
func EscapeMarkdown(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/8)
	for _, r := range text {
		if IsMarkdownReserved(r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// NewID генерирует уникальный ID вопроса (UUID v4, 36 символов).
func NewID() string {
	return uuid.NewString()
}
