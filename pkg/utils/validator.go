package utils

import (
	"errors"
	"net/mail"
	"strings"
)

// validator.go - валидация входных данных
//
// Назначение:
// Проверка корректности данных на границах системы.
//
// Функции:
// - NormalizeEmail: нормализация email для ключей rate limiter'а
// - ValidateEmail: проверка email формата
// - ValidateSolanaAddress: базовая проверка адреса кошелька
// - ValidatePassword: минимальные требования к паролю
//
// Возвращают error с описанием проблемы или nil.

// Ошибки валидации
var (
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrInvalidWalletAddress = errors.New("invalid solana wallet address")
)

// MinPasswordLength - минимальная длина пароля
const MinPasswordLength = 8

// base58Alphabet - алфавит base58 (без 0, O, I, l)
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// NormalizeEmail приводит email к канонической форме
//
// Используется как ключ rate limiter'а: "User@Example.COM " и
// "user@example.com" должны считаться одной учёткой.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateSolanaAddress выполняет базовую проверку адреса кошелька
//
// Полноценная проверка требует base58-декодирования и проверки длины
// публичного ключа; здесь достаточно отсечь очевидный мусор до
// обращения к RPC (32-44 символа base58).
func ValidateSolanaAddress(address string) error {
	if len(address) < 32 || len(address) > 44 {
		return ErrInvalidWalletAddress
	}
	for _, r := range address {
		if !strings.ContainsRune(base58Alphabet, r) {
			return ErrInvalidWalletAddress
		}
	}
	return nil
}
