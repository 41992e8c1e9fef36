package shared

import (
	"strings"

	appErrors "FundChain/internal/errors"
)

const SecondsPerDay int64 = 86400

func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "violates unique constraint")
}

// NormalizeAccount remove espaços nas pontas; o identificador em si é opaco
// e comparado byte a byte.
func NormalizeAccount(field, account string) (string, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", appErrors.NewValidationError(field, "é obrigatório")
	}
	if len(account) > 128 {
		return "", appErrors.NewValidationError(field, "deve ter no máximo 128 caracteres")
	}
	return account, nil
}
