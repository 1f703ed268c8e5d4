package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Код ошибки PostgreSQL unique_violation
const pqUniqueViolation = "23505"

// isUniqueViolation проверяет, нарушен ли уникальный индекс
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
