// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/validate"
)

// ErrMalformed wraps every decode failure so callers can map it to a 400.
var ErrMalformed = errors.New("malformed request body")

// JSON decodes r.Body as a single JSON object into dest and runs
// validation. Unknown fields and trailing data are malformed.
// Returns (errs, nil) when there are validation failures and
// (nil, err) when the body is malformed or too large.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err = dec.Decode(dest); err != nil {
		return nil, malformed(err)
	}
	if err = dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformed)
		}
		return nil, malformed(err)
	}

	if errs = validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}

func malformed(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: larger than %d bytes", ErrMalformed, maxErr.Limit)
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}
