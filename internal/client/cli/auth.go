package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"postcard-backend/internal/client/identity"
	"postcard-backend/internal/client/session"
)

// Register starts the sign-up flow: validate input, create the
// account, then prompt the user to confirm the emailed code.
func (a *App) Register(ctx context.Context) error {
	email, err := promptLine(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidateEmail(email); msg != "" {
		return errors.New(msg)
	}

	password, err := promptPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidatePassword(password); msg != "" {
		return errors.New(msg)
	}
	confirmation, err := promptPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidatePasswordConfirmation(confirmation, password); msg != "" {
		return errors.New(msg)
	}

	if err := a.provider.Register(ctx, email, password); err != nil {
		return errors.New(identity.Message(identity.FlowRegister, err))
	}
	fmt.Println("確認コードをメールに送信しました。'confirm' で確認してください。")
	return nil
}

// ConfirmRegistration completes sign-up with the emailed code
func (a *App) ConfirmRegistration(ctx context.Context) error {
	email, err := promptLine(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	code, err := promptLine(a.reader, "Enter confirmation code", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidateCode(code); msg != "" {
		return errors.New(msg)
	}

	if err := a.provider.ConfirmRegistration(ctx, email, code); err != nil {
		return errors.New(identity.Message(identity.FlowRegister, err))
	}
	fmt.Println("登録が完了しました。'login' でサインインしてください。")
	return nil
}

// ResendCode requests a new confirmation code
func (a *App) ResendCode(ctx context.Context) error {
	email, err := promptLine(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.provider.ResendConfirmationCode(ctx, email); err != nil {
		return errors.New(identity.Message(identity.FlowRegister, err))
	}
	fmt.Println("確認コードを再送信しました。")
	return nil
}

// Login signs in, exchanges the ID token for an API token and runs a
// forced profile check to land on the right state.
func (a *App) Login(ctx context.Context) error {
	email, err := promptLine(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidateEmail(email); msg != "" {
		return errors.New(msg)
	}
	password, err := promptPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}

	sess, err := a.provider.Login(ctx, email, password)
	if err != nil {
		return errors.New(identity.Message(identity.FlowLogin, err))
	}

	resp, err := a.api.ExchangeToken(ctx, sess.IDToken)
	if err != nil {
		return fmt.Errorf("failed to exchange token: %w", err)
	}
	if err := a.setSession(sess, resp.AccessToken); err != nil {
		return err
	}

	a.session.Invalidate()
	state := a.session.Refresh(ctx, true)
	a.printState(state)
	if state == session.StateAuthenticated {
		a.push.EnsureSubscribed(ctx)
	}
	return nil
}

// Logout signs out globally and wipes all local auth state
func (a *App) Logout(ctx context.Context) error {
	if token := a.accessToken(); token != "" {
		if err := a.provider.Logout(ctx, token); err != nil {
			fmt.Println("サインアウトに失敗しましたが、ローカルの状態は破棄します。")
		}
	}
	a.clearSession()
	fmt.Println("サインアウトしました。")
	return nil
}

// ForgotPassword starts the password reset flow
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := promptLine(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidateEmail(email); msg != "" {
		return errors.New(msg)
	}
	if err := a.provider.ForgotPassword(ctx, email); err != nil {
		return errors.New(identity.Message(identity.FlowForgotPassword, err))
	}
	fmt.Println("リセットコードをメールに送信しました。'reset' で新しいパスワードを設定してください。")
	return nil
}

// ResetPassword completes the password reset with the emailed code
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := promptLine(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	code, err := promptLine(a.reader, "Enter reset code", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidateCode(code); msg != "" {
		return errors.New(msg)
	}
	password, err := promptPassword("Enter new password", os.Stdout)
	if err != nil {
		return err
	}
	if msg := identity.ValidatePassword(password); msg != "" {
		return errors.New(msg)
	}

	if err := a.provider.ConfirmForgotPassword(ctx, email, code, password); err != nil {
		return errors.New(identity.Message(identity.FlowResetPassword, err))
	}
	fmt.Println("パスワードをリセットしました。'login' でサインインしてください。")
	return nil
}
