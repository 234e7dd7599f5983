package jwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
}

type Claims struct {
	Issuer         string      `json:"iss,omitempty"`
	Subject        string      `json:"sub,omitempty"`
	Audience       any         `json:"aud,omitempty"`
	ExpirationTime json.Number `json:"exp,omitempty"`
	IssuedAt       json.Number `json:"iat,omitempty"`
	JWTID          string      `json:"jti,omitempty"`
	Name           string      `json:"name,omitempty"`
	Email          string      `json:"email,omitempty"`
}

// Expiry returns the exp claim, if any.
func (c Claims) Expiry() (time.Time, bool) {
	if c.ExpirationTime == "" {
		return time.Time{}, false
	}
	exp, err := strconv.ParseFloat(c.ExpirationTime.String(), 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

// Expired reports whether the token is past its exp claim at now. Tokens
// without exp never expire.
func (c Claims) Expired(now time.Time) bool {
	exp, ok := c.Expiry()
	return ok && exp.Before(now)
}

// Decode parses header and claims of a token. The signature is not checked;
// the catalog services verify the tokens the portal forwards.
func Decode(jwt string) (*Header, *Claims, error) {

	split := strings.Split(jwt, ".")
	if len(split) != 3 {
		return nil, nil, fmt.Errorf("invalid jwt format")
	}

	var header Header
	headerBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(split[0], "="))
	if err != nil {
		return nil, nil, fmt.Errorf("decode jwt header: %w", err)
	}
	err = json.Unmarshal(headerBytes, &header)
	if err != nil {
		return nil, nil, fmt.Errorf("parse jwt header: %w", err)
	}

	if header.Type != "" && !strings.EqualFold(header.Type, "JWT") {
		return nil, nil, fmt.Errorf("unsupported token type %q", header.Type)
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(split[1], "="))
	if err != nil {
		return nil, nil, fmt.Errorf("decode jwt payload: %w", err)
	}

	var claims Claims
	decoder := json.NewDecoder(strings.NewReader(string(payloadBytes)))
	decoder.UseNumber()
	err = decoder.Decode(&claims)
	if err != nil {
		return nil, nil, fmt.Errorf("parse jwt claims: %w", err)
	}

	return &header, &claims, nil
}
