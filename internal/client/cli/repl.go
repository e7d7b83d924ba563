package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Open(ctx context.Context, id string) error
	NewChat(ctx context.Context) error
	Send(ctx context.Context, text string) error
	Say(ctx context.Context, audioPath string) error
	CancelSay(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	RemoveImage(ctx context.Context) error
	Prefs(ctx context.Context, arg string) error
	Delete(ctx context.Context, id string) error
	ResetMemory(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Vizzy CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                — show available commands
//	  - signup              — create an account
//	  - login               — authenticate
//	  - exit | quit         — leave the program
//
//	Logged in:
//	  - help                — show available commands
//	  - list                — list conversations
//	  - open <id>           — open a conversation
//	  - new                 — start a new chat
//	  - send [text]         — send the draft (inline text replaces it)
//	  - say <audio file>    — dictate into the draft
//	  - cancelsay           — abort dictation
//	  - upload <image file> — attach an image
//	  - rmimage             — drop the attached image
//	  - prefs on|off        — toggle taste history for sends
//	  - delete <id>         — delete a conversation
//	  - resetmemory         — wipe the server-side taste history
//	  - logout              — log out
//	  - exit | quit         — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vizzy %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, open, new, send, say, cancelsay, upload, rmimage, prefs, delete, resetmemory, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <id>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "new":
			_ = a.NewChat(ctx)

		case "send":
			_ = a.Send(ctx, strings.Join(args, " "))

		case "say":
			if len(args) == 0 {
				printlnFn("Usage: say <audio file>")
				continue
			}
			_ = a.Say(ctx, args[0])

		case "cancelsay":
			_ = a.CancelSay(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <image file>")
				continue
			}
			_ = a.Upload(ctx, args[0])

		case "rmimage":
			_ = a.RemoveImage(ctx)

		case "prefs":
			if len(args) == 0 {
				printlnFn("Usage: prefs on|off")
				continue
			}
			_ = a.Prefs(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "resetmemory":
			_ = a.ResetMemory(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
