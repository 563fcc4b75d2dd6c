// Package codec implements the transport encoding used for every payload that
// crosses the bridge.
//
// Payloads reach the web surface as string literals spliced into generated
// script statements, so the encoding must never produce quotes, backticks or
// line breaks. Standard base-64 with padding and no line wrapping satisfies
// that, and decoding is strict: anything outside the alphabet is rejected
// instead of being skipped.
//
// Example Usage:
//
//	text := codec.EncodeString("héllo")
//	raw, err := codec.Decode(text)
//	if errors.Is(err, codec.ErrDecode) {
//	    // malformed payload from the web layer
//	}
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode is returned for any payload that is not valid transport encoding.
var ErrDecode = errors.New("malformed transport payload")

var encoding = base64.StdEncoding.Strict()

// Encode converts raw bytes to transport-safe text.
func Encode(data []byte) string {
	return encoding.EncodeToString(data)
}

// EncodeString encodes the UTF-8 bytes of s.
func EncodeString(s string) string {
	return Encode([]byte(s))
}

// Decode converts transport text back to the original bytes.
// The decoder in encoding/base64 silently drops CR and LF, so they are
// rejected up front.
func Decode(text string) ([]byte, error) {
	if strings.ContainsAny(text, "\r\n") {
		return nil, fmt.Errorf("%w: line breaks are not part of the alphabet", ErrDecode)
	}

	data, err := encoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, nil
}

// DecodeString decodes text and returns the result as a string.
func DecodeString(text string) (string, error) {
	data, err := Decode(text)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
