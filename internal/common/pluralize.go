// Package common: pluralize.go содержит функции
// для правильного склонения русских числительных.
package common

import (
	"fmt"
	"math"
)

// PluralizeQuestions возвращает правильную форму слова «вопрос» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "вопрос" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "вопроса" (2, 3, 4, 22, ...)
//   - Остальные случаи → "вопросов" (0, 5-20, 25-30, 100, ...)
func PluralizeQuestions(n int64) string {
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "вопрос"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "вопроса"
	}
	return "вопросов"
}

// FormatQuestions создаёт строку вида "5 вопросов".
func FormatQuestions(n int64) string {
	return fmt.Sprintf("%d %s", n, PluralizeQuestions(n))
}
