package identity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func codeErr(code string) error {
	return &ProviderError{Code: code, err: fmt.Errorf("provider: %s", code)}
}

func TestMessagePerFlow(t *testing.T) {
	// The same provider code reads differently per flow.
	err := codeErr("UserNotFoundException")
	assert.Equal(t, "ユーザーが見つかりません", Message(FlowLogin, err))
	assert.Equal(t, "このメールアドレスは登録されていません", Message(FlowForgotPassword, err))
}

func TestMessageKnownCodes(t *testing.T) {
	assert.Equal(t, "メールアドレスまたはパスワードが正しくありません",
		Message(FlowLogin, codeErr("NotAuthorizedException")))
	assert.Equal(t, "このメールアドレスは既に登録されています",
		Message(FlowRegister, codeErr("UsernameExistsException")))
	assert.Equal(t, "確認コードの有効期限が切れています",
		Message(FlowResetPassword, codeErr("ExpiredCodeException")))
}

func TestMessageUnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "ログインに失敗しました", Message(FlowLogin, codeErr("SomethingNewException")))
	assert.Equal(t, "登録に失敗しました", Message(FlowRegister, errors.New("dial tcp: timeout")))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "CodeMismatchException", ErrorCode(codeErr("CodeMismatchException")))
	assert.Equal(t, "CodeMismatchException",
		ErrorCode(fmt.Errorf("confirm: %w", codeErr("CodeMismatchException"))))
	assert.Empty(t, ErrorCode(errors.New("plain")))
	assert.Empty(t, ErrorCode(nil))
}
