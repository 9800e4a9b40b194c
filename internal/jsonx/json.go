// Package jsonx is the JSON codec used across the module. It is
// json-iterator configured to behave like encoding/json.
package jsonx

import jsoniter "github.com/json-iterator/go"

var (
	// JSON is the jsoniter.API every package encodes and decodes with.
	JSON = jsoniter.ConfigCompatibleWithStandardLibrary

	// Marshal is a shorthand for JSON.Marshal
	Marshal = JSON.Marshal

	// Unmarshal is a shorthand for JSON.Unmarshal
	Unmarshal = JSON.Unmarshal

	// NewDecoder is a shorthand for JSON.NewDecoder
	NewDecoder = JSON.NewDecoder

	// NewEncoder is a shorthand for JSON.NewEncoder
	NewEncoder = JSON.NewEncoder
)

// RawMessage is a raw encoded JSON value.
type RawMessage = jsoniter.RawMessage
