package cli

import (
	"context"
	"fmt"
	"os"

	"postcard-backend/internal/client/api"
	"postcard-backend/internal/client/session"
)

// Profile shows the signed-in user's profile, or another user's
// public profile when an ID argument is given.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) > 0 {
		public, err := a.api.GetPublicProfile(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", public.Username, public.ID)
		if public.ProfileImageURL != "" {
			fmt.Println("  image:", public.ProfileImageURL)
		}
		return nil
	}

	result := a.checker.CheckUserExists(ctx, false)
	if result.Err != nil {
		return result.Err
	}
	if !result.Exists {
		fmt.Println("プロフィールが未設定です。'setup' で作成してください。")
		return nil
	}
	fmt.Printf("%s (%s)\n", result.Profile.Username, result.Profile.ID)
	fmt.Println("  email:", result.Profile.Email)
	if result.Profile.ProfileImageURL != "" {
		fmt.Println("  image:", result.Profile.ProfileImageURL)
	}
	return nil
}

// SetupProfile creates the profile (first run) or updates it
func (a *App) SetupProfile(ctx context.Context) error {
	username, err := promptLine(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	imageURL, err := promptLine(a.reader, "Enter profile image URL (optional)", os.Stdout)
	if err != nil {
		return err
	}
	req := api.ProfileRequest{Username: username, ProfileImageURL: imageURL}

	if a.session.State() == session.StateAuthenticated {
		if err := a.api.UpdateProfile(ctx, req); err != nil {
			return err
		}
	} else {
		if _, err := a.api.CreateProfile(ctx, req); err != nil {
			return err
		}
	}

	a.session.Invalidate()
	a.printState(a.session.Refresh(ctx, true))
	return nil
}
