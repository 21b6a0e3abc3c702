package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const accountNumberPrefix = "ACC"

// generateAccountNumber генерирует внешний номер счета вида ACC1A2B3C4D5E.
// Случайного суффикса в 5 байт достаточно, чтобы коллизии на практике не случались;
// уникальность в любом случае гарантирует констрейнт в базе.
func generateAccountNumber() string {
	suffix := make([]byte, 5)
	// rand.Read из crypto/rand не возвращает ошибку начиная с go1.24.
	_, _ = rand.Read(suffix)
	return accountNumberPrefix + strings.ToUpper(hex.EncodeToString(suffix))
}
