package identity

// Flow identifies which auth operation an error came from; the same
// provider code reads differently depending on what the user was doing.
type Flow int

// Auth flows with distinct error wording.
const (
	FlowLogin Flow = iota
	FlowRegister
	FlowForgotPassword
	FlowResetPassword
)

var loginMessages = map[string]string{
	"UserNotFoundException":     "ユーザーが見つかりません",
	"NotAuthorizedException":    "メールアドレスまたはパスワードが正しくありません",
	"UserNotConfirmedException": "アカウントが確認されていません。メールを確認してください",
}

var registerMessages = map[string]string{
	"UsernameExistsException":   "このメールアドレスは既に登録されています",
	"InvalidPasswordException":  "パスワードが要件を満たしていません",
	"InvalidParameterException": "入力内容に問題があります",
}

var forgotPasswordMessages = map[string]string{
	"UserNotFoundException":     "このメールアドレスは登録されていません",
	"InvalidParameterException": "メールアドレスが正しくありません",
}

var resetPasswordMessages = map[string]string{
	"CodeMismatchException":    "確認コードが正しくありません",
	"ExpiredCodeException":     "確認コードの有効期限が切れています",
	"NotAuthorizedException":   "確認コードが無効です",
	"InvalidPasswordException": "新しいパスワードが要件を満たしていません",
}

var defaultMessages = map[Flow]string{
	FlowLogin:          "ログインに失敗しました",
	FlowRegister:       "登録に失敗しました",
	FlowForgotPassword: "パスワードリセット要求に失敗しました",
	FlowResetPassword:  "パスワードリセットに失敗しました",
}

var flowMessages = map[Flow]map[string]string{
	FlowLogin:          loginMessages,
	FlowRegister:       registerMessages,
	FlowForgotPassword: forgotPasswordMessages,
	FlowResetPassword:  resetPasswordMessages,
}

// Message maps a provider error to a localized user-facing string for
// the given flow. Unknown codes get the flow's default message.
func Message(flow Flow, err error) string {
	if msg, ok := flowMessages[flow][ErrorCode(err)]; ok {
		return msg
	}
	return defaultMessages[flow]
}
