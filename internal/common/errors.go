// Package common: errors.go определяет ошибки, которые используются
// во всех модулях бота. Обработчики различают по ним типы проблем
// и отправляют пользователю понятные сообщения.
package common

import "errors"

// Ошибки валидации текста вопроса (исправляются пользователем)
var (
	// ErrQuestionEmpty: пустой вопрос или только пробелы
	ErrQuestionEmpty = errors.New("вопрос не может быть пустым")
	// ErrQuestionTooLong: вопрос длиннее MAX_QUESTION_LENGTH
	ErrQuestionTooLong = errors.New("вопрос слишком длинный")
)

// Ошибки жизненного цикла вопроса
var (
	// ErrQuestionNotFound: вопроса с таким ID нет в базе
	ErrQuestionNotFound = errors.New("вопрос не найден")
	// ErrInvalidTransition: вопрос уже принят или отклонён
	ErrInvalidTransition = errors.New("решение по вопросу уже принято")
	// ErrAlreadyAnswered: к вопросу уже прикреплён ответ
	ErrAlreadyAnswered = errors.New("на вопрос уже дан ответ")
	// ErrAdminSubmission: администраторы не задают вопросы через общий вход
	ErrAdminSubmission = errors.New("администратор не может отправлять вопросы")
)

// Ошибки сессии администратора
var (
	// ErrNotAdmin: пользователь не входит в ADMIN_IDS
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrNoPendingQuestion: админ не ждёт ответа ни на один вопрос
	ErrNoPendingQuestion = errors.New("нет вопроса, ожидающего ответа")
	// ErrWrongContentType: прислан не кружочек
	ErrWrongContentType = errors.New("нужно видеосообщение (кружочек)")
)

// Ошибки транспорта
var (
	// ErrTransport: Telegram не принял сообщение
	ErrTransport = errors.New("ошибка отправки в Telegram")
	// ErrPartialPublish: кружочек ушёл в канал, текст вопроса, нет
	ErrPartialPublish = errors.New("кружочек опубликован без текста вопроса")
)
