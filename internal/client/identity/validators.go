package identity

import (
	"regexp"
	"strings"
)

// Validation messages shown next to form fields.
const (
	MsgEmailRequired          = "メールアドレスを入力してください"
	MsgEmailInvalid           = "有効なメールアドレスを入力してください"
	MsgPasswordRequired       = "パスワードを入力してください"
	MsgPasswordMinLength      = "パスワードは8文字以上で入力してください"
	MsgPasswordComplexity     = "パスワードは大文字、小文字、数字、特殊文字を含む必要があります"
	MsgPasswordConfirmMissing = "パスワード確認を入力してください"
	MsgPasswordMismatch       = "パスワードが一致しません"
	MsgCodeRequired           = "確認コードを入力してください"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidateEmail checks email shape; returns "" when valid
func ValidateEmail(email string) string {
	if email == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	return ""
}

// ValidatePassword checks password complexity; returns "" when valid
func ValidatePassword(password string) string {
	if password == "" {
		return MsgPasswordRequired
	}
	if len(password) < 8 {
		return MsgPasswordMinLength
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) ||
		!strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) ||
		!strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return MsgPasswordComplexity
	}
	return ""
}

// ValidatePasswordConfirmation checks the confirmation field; returns
// "" when valid
func ValidatePasswordConfirmation(confirmation, password string) string {
	if confirmation == "" {
		return MsgPasswordConfirmMissing
	}
	if confirmation != password {
		return MsgPasswordMismatch
	}
	return ""
}

// ValidateCode checks a confirmation code is present; returns "" when valid
func ValidateCode(code string) string {
	if code == "" {
		return MsgCodeRequired
	}
	return ""
}
