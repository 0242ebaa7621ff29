package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"postcard-backend/internal/client/session"
)

// Run starts the interactive loop and blocks until exit or EOF
func (a *App) Run(ctx context.Context) {
	fmt.Println("Postcard CLI (type 'help' for commands)")

	state := a.session.Refresh(ctx, false)
	a.printState(state)
	if state == session.StateAuthenticated {
		a.push.EnsureSubscribed(ctx)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("postcard %s> ", a.statusLabel())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			a.printHelp()
		case "register":
			err = a.Register(ctx)
		case "confirm":
			err = a.ConfirmRegistration(ctx)
		case "resend":
			err = a.ResendCode(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "forgot":
			err = a.ForgotPassword(ctx)
		case "reset":
			err = a.ResetPassword(ctx)
		case "status":
			a.printState(a.session.Refresh(ctx, false))
		case "profile":
			err = a.Profile(ctx, args)
		case "setup":
			err = a.SetupProfile(ctx)
		case "create":
			err = a.CreatePostcard(ctx)
		case "my":
			err = a.MyPostcards(ctx)
		case "nearby", "map":
			err = a.Nearby(ctx)
		case "show":
			if len(args) == 0 {
				fmt.Println("Usage: show <postcard_id>")
				continue
			}
			err = a.ShowPostcard(ctx, args[0])
		case "collect":
			if len(args) == 0 {
				fmt.Println("Usage: collect <postcard_id>")
				continue
			}
			err = a.Collect(ctx, args[0])
		case "like":
			if len(args) == 0 {
				fmt.Println("Usage: like <postcard_id>")
				continue
			}
			err = a.Like(ctx, args[0])
		case "collection":
			err = a.Collection(ctx)
		case "upload":
			if len(args) == 0 {
				fmt.Println("Usage: upload <file>")
				continue
			}
			err = a.Upload(ctx, args[0])
		case "subscribe":
			err = a.push.Subscribe(ctx)
		case "unsubscribe":
			err = a.push.Unsubscribe(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}

		if err != nil {
			fmt.Println("Error:", err)
		}
	}
}

func (a *App) statusLabel() string {
	switch a.session.State() {
	case session.StateAuthenticated:
		return "(signed in)"
	case session.StateNeedsProfileSetup:
		return "(setup required)"
	default:
		return ""
	}
}

func (a *App) printState(state session.State) {
	switch state {
	case session.StateAuthenticated:
		fmt.Println("Signed in.")
	case session.StateNeedsProfileSetup:
		fmt.Println("Signed in, but profile setup is required. Run 'setup'.")
	case session.StateUnauthenticated:
		fmt.Println("Not signed in. Run 'login' or 'register'.")
	}
}

func (a *App) printHelp() {
	if a.session.State() == session.StateAuthenticated {
		fmt.Println("Commands: profile, create, my, nearby, show, collect, like, collection, upload, subscribe, unsubscribe, logout, exit")
		return
	}
	fmt.Println("Commands: register, confirm, resend, login, forgot, reset, setup, status, exit")
}
