package nextgen

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

func JsonPrint(tag string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: error marshaling: %v\n", tag, err)
		return
	}
	fmt.Printf("%s: %s\n", tag, string(b))
}

// ErrInvalidID is matched by every error returned from the ID helpers.
var ErrInvalidID = errors.New("invalid id")

// IDError reports which input could not be converted.
type IDError struct {
	Op    string // encode, decode, convert
	Input string
}

func (e *IDError) Error() string {
	return fmt.Sprintf("wrong format for %s: %s", e.Op, e.Input)
}

func (e *IDError) Unwrap() error {
	return ErrInvalidID
}

// EncodeID turns a dataset IRI into a path-safe token.
func EncodeID(id string) (string, error) {
	if !isAbsoluteURL(id) {
		return "", &IDError{Op: "encode", Input: id}
	}
	return base64.RawURLEncoding.EncodeToString([]byte(encodeURIComponent(id))), nil
}

// DecodeID reverses EncodeID. Tokens produced with padding or with the
// standard base64 alphabet are accepted too.
func DecodeID(hash string) (string, error) {
	normalized := strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimRight(hash, "="))
	raw, err := base64.RawURLEncoding.DecodeString(normalized)
	if err != nil {
		return "", &IDError{Op: "decode", Input: hash}
	}
	decoded, err := url.PathUnescape(string(raw))
	if err != nil {
		return "", &IDError{Op: "decode", Input: hash}
	}
	if !isAbsoluteURL(decoded) {
		return "", &IDError{Op: "decode", Input: hash}
	}
	return decoded, nil
}

func IsValidID(id string) bool {
	return isAbsoluteURL(id)
}

func IsValidHash(hash string) bool {
	_, err := DecodeID(hash)
	return err == nil
}

// ConvertID encodes IRIs and decodes tokens, whichever the input is.
func ConvertID(input string) (string, error) {
	if IsValidID(input) {
		return EncodeID(input)
	}
	if decoded, err := DecodeID(input); err == nil {
		return decoded, nil
	}
	return "", &IDError{Op: "convert", Input: input}
}

func isAbsoluteURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "" || u.Path != "")
}

const hexUpper = "0123456789ABCDEF"

// encodeURIComponent matches the browser function so tokens stay
// interchangeable with the ones the UI generates.
func encodeURIComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexUpper[c>>4])
		b.WriteByte(hexUpper[c&15])
	}
	return b.String()
}

func isUnreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
