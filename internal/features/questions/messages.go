// Package questions: messages.go собирает тексты сообщений бота.
// Тексты в MarkdownV2 уже экранированы.
package questions

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"marilove.ru/question-bot/internal/common"
)

const (
	msgWelcome = "👋 Добро пожаловать\\!\n\n" +
		"Я бот для анонимных вопросов клиники «МариЛав»\\.\n\n" +
		"Вы можете задать любой вопрос, и врачи клиники ответят на него в видеоформате\\. " +
		"Ваш вопрос будет полностью анонимным\\.\n\n" +
		"💬 Просто напишите ваш вопрос в чат\\."

	msgSubmitFailed    = "❌ Произошла ошибка при отправке вопроса. Попробуйте позже."
	msgTextOnly        = "❌ Пожалуйста, отправьте только текстовый вопрос без вложений."
	msgSendVideoNote   = "✅ Вопрос принят\\!\n\nТеперь отправьте видеосообщение \\(кружочек\\) с ответом\\."
	msgRejected        = "❌ Вопрос отклонён"
	msgWrongContent    = "❌ Пожалуйста, отправьте именно видеосообщение (кружочек), а не другой тип контента."
	msgPublished       = "✅ Вопрос опубликован в канале\\!"
	msgNoPending       = "Сейчас нет вопроса, ожидающего ответа. Список открытых вопросов: /pending"
	msgNotFound        = "❌ Вопрос не найден в базе данных"
	msgAlreadyAnswered = "❌ На этот вопрос уже опубликован ответ"
	msgPublishFailed   = "❌ Произошла ошибка при публикации"
	msgPartialPublish  = "⚠️ Кружочек опубликован, но текст вопроса в канал не отправлен. Добавьте его вручную."
	msgAnswerUsage     = "Использование: /answer <ID вопроса>"
	msgNothingOpen     = "✅ Открытых вопросов нет"
	msgContinued       = "(продолжение)\n"

	// Ответы на нажатие кнопок
	cbApproved       = "Вопрос принят"
	cbRejected       = "Вопрос отклонён"
	cbAlreadyDecided = "Решение по этому вопросу уже принято"
	cbNotFound       = "Вопрос не найден"
	cbUnknown        = "Неизвестная кнопка"
	cbFailed         = "Ошибка при обработке"
	cbNotifyFailed   = "Решение сохранено, но сообщение не отправлено"
	cbNotAdmin       = "Нет прав администратора"
)

// channelSignature добавляется к тексту вопроса в канале.
const channelSignature = "\n\n📍 На вопросы отвечают квалифицированные врачи: " +
	"косметологи, массажисты, специалисты по коррекции фигуры " +
	"и главный врач клиники Мария Лаврентьева. " +
	"Ответ может занять какое-то время.\n\n" +
	"👉 Подписывайтесь: @marilove_channel"

// ChannelPostText: текст, который идёт в канал следом за кружочком.
func ChannelPostText(questionText string) string {
	return "❓ Вопрос: " + questionText + channelSignature
}

// adminNotificationText: уведомление админа о новом вопросе (MarkdownV2).
func adminNotificationText(q *Question) string {
	return fmt.Sprintf(
		"📩 *Новый вопрос*\n\nID: `%s`\n\n*Вопрос:*\n%s",
		q.ID, EscapeMarkdown(q.Text),
	)
}

// plainNotificationText: то же уведомление без разметки, если Telegram
// не принял MarkdownV2.
func plainNotificationText(q *Question) string {
	return fmt.Sprintf("📩 Новый вопрос\n\nID: %s\n\nВопрос:\n%s", q.ID, q.Text)
}

// submittedText: подтверждение пользователю (MarkdownV2).
func submittedText(channelLink string) string {
	return "✅ Ваш вопрос отправлен\\!\n\n" +
		"Ответ будет опубликован в канале «МариЛав»: " + EscapeMarkdown(channelLink) + "\n\n" +
		"Спасибо\\!"
}

// telegramTextLimit: максимальная длина сообщения Telegram в символах.
const telegramTextLimit = 4096

// splitMessage собирает заголовок и записи в сообщения не длиннее limit
// символов. Запись не разрывается между сообщениями; продолжение
// начинается со строки «(продолжение)».
func splitMessage(header string, entries []string, limit int) []string {
	var (
		out  []string
		sb   strings.Builder
		size int
	)
	sb.WriteString(header)
	size = utf8.RuneCountInString(header)

	for _, entry := range entries {
		n := utf8.RuneCountInString(entry)
		if size+n > limit && size > 0 {
			out = append(out, sb.String())
			sb.Reset()
			sb.WriteString(msgContinued)
			size = utf8.RuneCountInString(msgContinued)
		}
		sb.WriteString(entry)
		size += n
	}
	return append(out, sb.String())
}

// openListText: список открытых вопросов для /pending (без разметки),
// разбитый на сообщения в пределах лимита Telegram.
func openListText(list []*Question) []string {
	if len(list) == 0 {
		return []string{msgNothingOpen}
	}

	entries := make([]string, 0, len(list))
	for _, q := range list {
		var sb strings.Builder
		sb.WriteString("\n")
		switch q.Status {
		case StatusPending:
			sb.WriteString("⏳ ждёт решения")
		default:
			sb.WriteString("🎥 ждёт кружочка")
		}
		sb.WriteString(fmt.Sprintf(" · %s\n", common.FormatDateTime(q.CreatedAt)))
		sb.WriteString(common.Truncate(q.Text, 100) + "\n")
		if q.Status == StatusApproved {
			sb.WriteString("/answer " + q.ID + "\n")
		} else {
			sb.WriteString("ID: " + q.ID + "\n")
		}
		entries = append(entries, sb.String())
	}

	header := fmt.Sprintf("📋 Открыто: %s\n", common.FormatQuestions(int64(len(list))))
	return splitMessage(header, entries, telegramTextLimit)
}

// staleReminderText: напоминание о принятых вопросах без ответа.
func staleReminderText(list []*Question) []string {
	entries := make([]string, 0, len(list))
	for _, q := range list {
		entries = append(entries, "\n"+common.Truncate(q.Text, 100)+"\n/answer "+q.ID+"\n")
	}
	header := fmt.Sprintf("⏰ Без ответа: %s\n", common.FormatQuestions(int64(len(list))))
	return splitMessage(header, entries, telegramTextLimit)
}
