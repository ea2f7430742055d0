package ecs

import (
	"errors"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Codec converts a component value to and from its single-string wire form.
// Implementations must be loss-free for every field the type declares.
type Codec[T any] interface {
	Encode(value *T) (string, error)
	Decode(data string, value *T) error
}

// JSONCodec is the default codec. Decoding is strict: unknown fields and
// trailing data are rejected, which acts as the schema check for the type.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(value *T) (string, error) {
	bz, err := json.Marshal(value)
	if err != nil {
		return "", eris.Wrap(err, "encode component")
	}
	return string(bz), nil
}

func (JSONCodec[T]) Decode(data string, value *T) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return eris.Wrapf(ErrMalformedValue, "%v", err)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return eris.Wrap(ErrMalformedValue, "trailing data after value")
	}
	return nil
}
