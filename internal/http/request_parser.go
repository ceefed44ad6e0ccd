package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// badRequestError is a body that could not be decoded at all, as opposed
// to a well-formed body with invalid values.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

// decodeJSON reads one JSON object into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &badRequestError{msg: "request body is empty"}
		case errors.As(err, &maxErr):
			return &badRequestError{msg: "request body too large"}
		case errors.Is(err, core.ErrInvalidInput):
			// Raised by a field's own UnmarshalJSON, e.g. a malformed date.
			return err
		default:
			return &badRequestError{msg: "invalid JSON: " + err.Error()}
		}
	}
	if dec.More() {
		return &badRequestError{msg: "request body must contain a single JSON object"}
	}
	return nil
}

// ParseMonthQuery reads ?month=YYYY-MM. A missing value returns nil.
func ParseMonthQuery(query url.Values) (*datebucket.Interval, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return nil, nil
	}
	iv, err := datebucket.ParseMonthKey(v)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// pathDate parses the {date} route variable.
func pathDate(r *http.Request) (core.Date, error) {
	v := mux.Vars(r)["date"]
	d, err := datebucket.ParseDay(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("path date: %w", err)
	}
	return d, nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// optionalDate parses "YYYY-MM-DD"; an empty string is the zero date.
func optionalDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	return datebucket.ParseDay(s)
}
