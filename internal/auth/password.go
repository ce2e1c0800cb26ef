package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost はbcryptのコストパラメータ。
const PasswordCost = bcrypt.DefaultCost

// MinPasswordLength はパスワードの最小文字数。
const MinPasswordLength = 8

// HashPassword は平文パスワードのbcryptハッシュを返す。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword はハッシュと平文パスワードが一致するかを返す。
// ハッシュが不正な形式の場合もfalseを返す。
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
