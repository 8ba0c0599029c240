// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, работа с временем, обрезка текста.
package common

import (
	"time"
)

// moscow: часовой пояс, в котором админы видят даты.
var moscow = loadMoscow()

func loadMoscow() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// Если не удалось загрузить: используем UTC+3 вручную
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// MoscowLocation возвращает часовой пояс Москвы.
func MoscowLocation() *time.Location {
	return moscow
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
// Используется в списках вопросов для админов.
func FormatDateTime(t time.Time) string {
	return t.In(moscow).Format("02.01.2006 15:04")
}

// Truncate обрезает строку до limit символов (рун) и добавляет "...".
//
// Примеры:
//
//	Truncate("привет", 10) → "привет"
//	Truncate("привет", 3)  → "при..."
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
