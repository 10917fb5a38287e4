package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/lib/slug"
)

// Верхняя граница числа проб суффикса. Проба — это только оптимизация:
// источником истины остается уникальный индекс products.alias,
// поэтому исчерпание лимита означает аномально плотное пространство алиасов.
const maxAliasAttempts = 10000

// generateUniqueAlias нормализует базу и подбирает свободный алиас,
// пробуя кандидатов внутри переданной транзакции: сначала сам слаг,
// затем слаг-2, слаг-3 и так далее. Суффикс добавляется к уже
// нормализованной базе и не нормализуется повторно; после добавления
// кандидат заново усекается до maxLen.
//
// Проверка и вставка не атомарны между разными транзакциями: проигравшая
// гонку вставка вернет нарушение уникальности из БД, оно отдается
// вызывающему как конфликт и не ретраится.
func (s *productService) generateUniqueAlias(ctx context.Context, tx *sql.Tx, base string, maxLen int) (string, error) {
	candidate := slug.Make(base, maxLen)

	exists, err := s.productRepo.AliasExists(ctx, tx, candidate)
	if err != nil {
		return "", err
	}
	if !exists {
		return candidate, nil
	}

	normalized := candidate
	for counter := 2; counter <= maxAliasAttempts; counter++ {
		candidate = fmt.Sprintf("%s-%d", normalized, counter)
		if len(candidate) > maxLen {
			candidate = candidate[:maxLen]
		}
		exists, err := s.productRepo.AliasExists(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperr.Conflict("Could not generate a unique alias for %q", base)
}
