package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any provider call when required
	// fields are missing or too short.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGenerationFailed means every attempt was rejected or errored.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrNoJSONObjectFound means the response had no '{' ... '}' span.
	ErrNoJSONObjectFound = errors.New("no JSON object found in response")
	// ErrMalformedJSON means the extracted span did not decode or validate.
	ErrMalformedJSON = errors.New("malformed JSON in response")
)

const maxRawPrefixRunes = 500

// MalformedJSONError carries a truncated copy of the offending response.
type MalformedJSONError struct {
	Raw string
	Err error
}

func newMalformedJSONError(raw string, err error) *MalformedJSONError {
	return &MalformedJSONError{Raw: truncateRunes(raw, maxRawPrefixRunes), Err: err}
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedJSON.Error(), e.Err)
}

func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedJSON) hold for every MalformedJSONError.
func (e *MalformedJSONError) Is(target error) bool {
	return target == ErrMalformedJSON
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

type noJSONObjectError struct {
	raw string
}

func (e *noJSONObjectError) Error() string { return ErrNoJSONObjectFound.Error() }

func (e *noJSONObjectError) Is(target error) bool { return target == ErrNoJSONObjectFound }

// RawResponse returns the truncated model output carried by a parse error.
func RawResponse(err error) (string, bool) {
	var malformed *MalformedJSONError
	if errors.As(err, &malformed) {
		return malformed.Raw, true
	}
	var missing *noJSONObjectError
	if errors.As(err, &missing) {
		return missing.raw, true
	}
	return "", false
}
