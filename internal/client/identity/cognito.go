package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// Cognito implements Provider against an AWS Cognito user pool
type Cognito struct {
	client   *cip.Client
	clientID string
}

// NewCognito creates a Cognito identity provider for the given app client
func NewCognito(ctx context.Context, region, clientID string) (*Cognito, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Cognito{
		client:   cip.NewFromConfig(cfg),
		clientID: clientID,
	}, nil
}

// Register signs up a new user; a confirmation code is emailed
func (c *Cognito) Register(ctx context.Context, email, password string) error {
	_, err := c.client.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return providerError(err)
	}
	return nil
}

// ConfirmRegistration completes sign-up with the emailed code
func (c *Cognito) ConfirmRegistration(ctx context.Context, email, code string) error {
	_, err := c.client.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return providerError(err)
	}
	return nil
}

// ResendConfirmationCode re-sends the sign-up confirmation code
func (c *Cognito) ResendConfirmationCode(ctx context.Context, email string) error {
	_, err := c.client.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		return providerError(err)
	}
	return nil
}

// Login authenticates with email and password
func (c *Cognito) Login(ctx context.Context, email, password string) (*Session, error) {
	out, err := c.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, providerError(err)
	}
	return sessionFromResult(out.AuthenticationResult)
}

// Refresh exchanges a refresh token for fresh session tokens
func (c *Cognito) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	out, err := c.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, providerError(err)
	}

	session, err := sessionFromResult(out.AuthenticationResult)
	if err != nil {
		return nil, err
	}
	// Cognito does not rotate the refresh token on this flow.
	session.RefreshToken = refreshToken
	return session, nil
}

// ForgotPassword starts the password reset flow
func (c *Cognito) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		return providerError(err)
	}
	return nil
}

// ConfirmForgotPassword completes the password reset flow
func (c *Cognito) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := c.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		return providerError(err)
	}
	return nil
}

// Logout invalidates all of the user's tokens
func (c *Cognito) Logout(ctx context.Context, accessToken string) error {
	_, err := c.client.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return providerError(err)
	}
	return nil
}

func sessionFromResult(result *types.AuthenticationResultType) (*Session, error) {
	if result == nil || result.IdToken == nil {
		return nil, fmt.Errorf("authentication returned no tokens")
	}

	session := &Session{
		IDToken:   aws.ToString(result.IdToken),
		ExpiresAt: time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	if result.AccessToken != nil {
		session.AccessToken = aws.ToString(result.AccessToken)
	}
	if result.RefreshToken != nil {
		session.RefreshToken = aws.ToString(result.RefreshToken)
	}
	return session, nil
}

// ProviderError carries the provider's error code so callers can map it
// to a user-facing message.
type ProviderError struct {
	Code string
	err  error
}

func (e *ProviderError) Error() string { return e.err.Error() }
func (e *ProviderError) Unwrap() error { return e.err }

func providerError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Code: apiErr.ErrorCode(), err: err}
	}
	return err
}

// ErrorCode extracts the provider error code from an error chain, or ""
func ErrorCode(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
