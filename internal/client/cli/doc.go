// Package cli provides the interactive Vizzy command-line client.
//
// It wires configuration, the local credential store, the backend gateway and
// an interactive REPL around the session controller. Typical flow: restore a
// saved session (or prompt for credentials), then compose and send prompts,
// optionally with an attached image or dictated text.
//
// Key features:
//   - Signup / Login / Logout with a credential persisted across runs
//   - List, open and delete conversations
//   - Send text and image prompts, with per-send taste-history toggle
//   - Dictate prompt text from a recorded audio file
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
