package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLen — предельная длина алиаса по умолчанию
const DefaultMaxLen = 120

// Fallback возвращается, когда после нормализации не осталось ни одного символа
const Fallback = "item"

// Таблица транслитерации кириллицы (русский и украинский алфавиты) в латиницу.
// Символы, отсутствующие в таблице, проходят без изменений.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'ґ': "g", 'д': "d", 'е': "e", 'ё': "e", 'є': "ie", 'ж': "zh",
	'з': "z", 'и': "i", 'і': "i", 'ї': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'А': "a", 'Б': "b", 'В': "v", 'Г': "g", 'Ґ': "g", 'Д': "d", 'Е': "e", 'Ё': "e", 'Є': "ie", 'Ж': "zh",
	'З': "z", 'И': "i", 'І': "i", 'Ї': "i", 'Й': "i", 'К': "k", 'Л': "l", 'М': "m", 'Н': "n", 'О': "o",
	'П': "p", 'Р': "r", 'С': "s", 'Т': "t", 'У': "u", 'Ф': "f", 'Х': "h", 'Ц': "ts", 'Ч': "ch",
	'Ш': "sh", 'Щ': "sch", 'Ъ': "", 'Ы': "y", 'Ь': "", 'Э': "e", 'Ю': "yu", 'Я': "ya",
}

// удаление комбинируемых диакритических знаков после NFKD-декомпозиции
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Make превращает произвольный текст в алиас: только [a-z0-9],
// разделенные одиночными дефисами, без дефисов по краям, не длиннее maxLen.
// Функция чистая и идемпотентная, никогда не возвращает пустую строку.
func Make(text string, maxLen int) string {
	var sb strings.Builder
	for _, r := range text {
		if repl, ok := translit[r]; ok {
			sb.WriteString(repl)
		} else {
			sb.WriteRune(r)
		}
	}

	normalized, _, err := transform.String(stripMarks, sb.String())
	if err != nil {
		normalized = sb.String()
	}
	normalized = strings.ToLower(normalized)

	// каждая максимальная последовательность символов вне [a-z0-9] схлопывается в один дефис
	var out []rune
	hyphen := false
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			hyphen = false
			continue
		}
		if !hyphen && len(out) > 0 {
			out = append(out, '-')
			hyphen = true
		}
	}

	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	result := strings.Trim(string(out), "-")
	if result == "" {
		return Fallback
	}
	return result
}
