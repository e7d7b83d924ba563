// Package common contains shared constants and sentinel errors used across
// Vizzy components.
package common

const (
	// AuthHeaderName is the HTTP header carrying the access token on
	// authenticated requests.
	AuthHeaderName = "Authorization"

	// BearerPrefix precedes the token value in AuthHeaderName.
	BearerPrefix = "Bearer "
)

// Message roles as stored and transferred. The set is fixed: a conversation
// alternates between the two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Asset types. The scheme is open-ended; these are the ones the pipeline
// currently produces.
const (
	AssetTypeImage = "image"
	AssetTypeVideo = "video"
)
