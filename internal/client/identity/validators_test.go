package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", MsgEmailRequired},
		{"plainaddress", MsgEmailInvalid},
		{"missing@tld", MsgEmailInvalid},
		{"has space@example.com", MsgEmailInvalid},
		{"taro@example.com", ""},
		{"taro+tag@mail.example.co.jp", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateEmail(tt.email), "email %q", tt.email)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"", MsgPasswordRequired},
		{"Ab1", MsgPasswordMinLength},
		{"alllowercase1", MsgPasswordComplexity},
		{"ALLUPPERCASE1", MsgPasswordComplexity},
		{"NoDigitsHere", MsgPasswordComplexity},
		{"Passw0rdOK", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidatePassword(tt.password), "password %q", tt.password)
	}
}

func TestValidatePasswordConfirmation(t *testing.T) {
	assert.Equal(t, MsgPasswordConfirmMissing, ValidatePasswordConfirmation("", "Passw0rd"))
	assert.Equal(t, MsgPasswordMismatch, ValidatePasswordConfirmation("Passw0rd!", "Passw0rd"))
	assert.Empty(t, ValidatePasswordConfirmation("Passw0rd", "Passw0rd"))
}

func TestValidateCode(t *testing.T) {
	assert.Equal(t, MsgCodeRequired, ValidateCode(""))
	assert.Empty(t, ValidateCode("123456"))
}
