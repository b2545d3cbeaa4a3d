// Package directory resolves addresses and offices against the public
// lookup services: the Census geocoder, Congress.gov and OpenStates.
package directory

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	// ErrAddressNotFound is returned when the geocoder has no match for an address
	ErrAddressNotFound = errors.New("address not found in census database")

	// ErrStateUnknown is returned when the best match carries no state
	ErrStateUnknown = errors.New("could not determine state")

	// ErrAdapterDisabled is returned by adapters started without credentials
	ErrAdapterDisabled = errors.New("directory adapter disabled: missing API key")
)

// Logger interface for directory adapters
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// flexString decodes a JSON string, number or null into a string.
// Upstream services are not consistent about district and code types.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string {
	return string(f)
}
