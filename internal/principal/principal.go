// Package principal decodes the pre-authenticated identity delivered by the
// external identity provider. No credential verification happens here; the
// provider sits in front of this service and is trusted to have done it.
package principal

import (
	"encoding/base64"
	"encoding/json"
)

// Header carries the base64-encoded JSON principal on every inbound request.
const Header = "X-Ms-Client-Principal"

type Claim struct {
	Type  string `json:"typ"`
	Value string `json:"val"`
}

type Principal struct {
	UserID   string  `json:"userId"`
	Name     string  `json:"userDetails"`
	Provider string  `json:"identityProvider"`
	Claims   []Claim `json:"userClaims"`
}

// Decode parses a base64-encoded JSON principal header value. It returns
// false for an empty value, undecodable input, or a principal without a user
// id; all of those mean the request is unauthenticated.
func Decode(headerValue string) (Principal, bool) {
	if headerValue == "" {
		return Principal{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(headerValue)
	if err != nil {
		return Principal{}, false
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return Principal{}, false
	}
	if p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}
