// Package creds persists the session credential between CLI runs.
//
// The token lives in a local sqlite database so a restarted client resumes
// its session without logging in again. The Store satisfies api.TokenSource,
// so the gateway always reads the value saved by the most recent
// Save or Clear.
package creds

import "context"

// tokenKey is the local_state row holding the bearer token.
const tokenKey = "access_token"

// Store reads and writes the saved credential. An empty token from Token
// means "not logged in"; it is not an error.
type Store interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
