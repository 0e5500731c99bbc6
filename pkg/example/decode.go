package example

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrInvalidJSON is returned by Decode when the input is not a single valid
// JSON document.
var ErrInvalidJSON = errors.New("invalid JSON")

type decodeConfig struct {
	sentinelMarkers bool
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

// WithSentinelMarkers makes Decode turn strings spelled exactly like a
// sentinel marker into the corresponding Sentinel.
func WithSentinelMarkers() DecodeOption {
	return func(c *decodeConfig) {
		c.sentinelMarkers = true
	}
}

// Decode parses a JSON document into an example value, preserving object key
// order. Duplicate keys keep the position of their first occurrence and the
// value of their last.
func Decode(data []byte, opts ...DecodeOption) (any, error) {
	cfg := &decodeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return cfg.decodeValue(value, dataType)
}

func (c *decodeConfig) decodeValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Null:
		return nil, nil

	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)

	case jsonparser.Number:
		return json.Number(string(value)), nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("decoding string: %w", err)
		}
		if c.sentinelMarkers {
			if sentinel, ok := sentinelForMarker(s); ok {
				return sentinel, nil
			}
		}
		return s, nil

	case jsonparser.Array:
		return c.decodeArray(value)

	case jsonparser.Object:
		return c.decodeObject(value)

	default:
		return nil, fmt.Errorf("%w: unexpected %s value", ErrInvalidJSON, dataType)
	}
}

func (c *decodeConfig) decodeArray(value []byte) ([]any, error) {
	result := make([]any, 0)
	var firstErr error

	_, err := jsonparser.ArrayEach(value, func(elem []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		decoded, err := c.decodeValue(elem, dataType)
		if err != nil {
			firstErr = err
			return
		}
		result = append(result, decoded)
	})
	if err != nil {
		return nil, fmt.Errorf("decoding array: %w", err)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

func (c *decodeConfig) decodeObject(value []byte) (*Object, error) {
	obj := NewObject()

	err := jsonparser.ObjectEach(value, func(key []byte, val []byte, dataType jsonparser.ValueType, _ int) error {
		decoded, err := c.decodeValue(val, dataType)
		if err != nil {
			return err
		}
		obj.Set(string(key), decoded)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decoding object: %w", err)
	}
	return obj, nil
}
