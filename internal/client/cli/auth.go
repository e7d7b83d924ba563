package cli

import (
	"context"
	"os"

	"github.com/vizzyhq/vizzy/internal/client/session"
	"github.com/vizzyhq/vizzy/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts the user for an email and password and attempts to create a
// new account. Registration does not log in; the user is told to log in next.
//
// The password byte slice is securely wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.ctrl.Signup(ctx, email, string(password)); err != nil {
		printlnFn("Signup failed:", session.UserMessage(err))
		return err
	}

	printlnFn("Account created. Now log in.")
	return nil
}

// Login prompts the user for credentials and tries to authenticate. On
// success the token is persisted and the conversation list is loaded.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.ctrl.Login(ctx, email, string(password)); err != nil {
		printlnFn("Login failed:", session.UserMessage(err))
		return err
	}

	printlnFn("Logged in.")
	return nil
}

// Logout clears the saved credential and all session state.
func (a *App) Logout(ctx context.Context) error {
	if a.voice != nil {
		a.voice.Cancel()
	}
	if err := a.ctrl.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}
