// Package parser is the fallible decode boundary between host payloads and
// the typed data model. Raw JSON never crosses it: every operation either
// yields fully populated descriptors or a structured decode error naming
// the offending field.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// DecodeError reports what failed to decode and where.
type DecodeError struct {
	Payload string
	Field   string
	Reason  string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %s", e.Payload, e.Reason)
	}
	return fmt.Sprintf("decode %s: field %q: %s", e.Payload, e.Field, e.Reason)
}

// Parser decodes host payloads. It is stateless apart from its logger.
type Parser struct {
	log zerolog.Logger
}

// New creates a parser.
func New(log zerolog.Logger) *Parser {
	return &Parser{log: log.With().Str("component", "parser").Logger()}
}

// decode unmarshals strictly: unknown fields are decode errors, so typos in
// host payloads surface instead of silently dropping attributes.
func decode(payload string, data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &DecodeError{Payload: payload, Reason: err.Error()}
	}
	return nil
}
