package pricing

import (
	"math"
	"strconv"
	"strings"
)

var currencyTokens = []string{"₺", "TL", "TRY", "tl", "try"}

// Normalize приводит строковую цену из меню к каноническому числу.
// Формат исходного рынка: "." — разделитель тысяч, "," — десятичный
// ("₺1.234,56" -> 1234.56). Нераспознанная строка дает 0, а не ошибку:
// вызывающий код трактует 0 как "неизвестно/бесплатно".
func Normalize(input string) float64 {
	cleaned := input
	for _, token := range currencyTokens {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.Join(strings.Fields(cleaned), "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	if value < 0 {
		return 0
	}

	return value
}

// NormalizeFloat возвращает уже числовую цену без изменений, отсекая
// только отрицательные и нечисловые значения.
func NormalizeFloat(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}

	return value
}
