package loader

import (
	"bytes"
	"errors"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

func decodeTOML(path string, data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return nil
	}

	pe := &ParseError{Path: path, Message: err.Error(), Err: err}
	var de *toml.DecodeError
	var se *toml.StrictMissingError
	switch {
	case errors.As(err, &de):
		pe.Line, pe.Column = de.Position()
	case errors.As(err, &se):
		if len(se.Errors) > 0 {
			first := se.Errors[0]
			pe.Line, pe.Column = first.Position()
			pe.Message = "unknown key " + strings.Join(first.Key(), ".")
		}
	}
	return pe
}
