package models

import "time"

// User - учётная запись пользователя
type User struct {
	ID    int    `json:"id" db:"id"`
	Email string `json:"email" db:"email"` // хранится нормализованным

	// PasswordHash - bcrypt, не возвращается в JSON
	PasswordHash string `json:"-" db:"password_hash"`

	// SimpleFINAccessURL - зашифрованный access URL (AES-256-GCM),
	// не возвращается в JSON
	SimpleFINAccessURL string `json:"-" db:"simplefin_access_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
