package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"notesapi/errs"

	"github.com/google/uuid"
)

// decodeBody unmarshals a JSON object into dst. Unknown fields are ignored.
// Malformed JSON, wrong primitive types and trailing data are validation
// errors; an empty body is accepted only when allowEmpty is set.
func decodeBody(body []byte, dst any, allowEmpty bool) error {
	if len(bytes.TrimSpace(body)) == 0 {
		if allowEmpty {
			return nil
		}
		return errs.New(errs.Validation, "request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return errs.Wrap(errs.Validation, fmt.Sprintf("request body must be a JSON object, got %s", typeErr.Value), err)
			}
			return errs.Wrap(errs.Validation, fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value), err)
		}
		return errs.Wrap(errs.Validation, "invalid JSON: "+err.Error(), err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errs.New(errs.Validation, "invalid JSON: unexpected data after top-level object")
	}
	return nil
}

func requiredField(name string) error {
	return errs.Newf(errs.Validation, "%s: field required", name)
}

// ParseID parses an identity path parameter.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.Validation, fmt.Sprintf("invalid id %q: must be a UUID", s), err)
	}
	return id, nil
}
