// Package schemas holds the JSON Schema documents shipped with the binary.
package schemas

import _ "embed"

// UserProfile is the JSON Schema for model-produced profiles.
//
//go:embed user_profile.schema.json
var UserProfile string
