// Package formutil decodes JSON request bodies into input structs.
//
// Handlers declare an input struct with pointer fields for optional values
// and call Decode; a malformed body yields a *BodyError the caller reports
// as 400 Bad Request.
//
//	var in groupInput
//	if err := formutil.Decode(w, r, &in); err != nil {
//		h.ErrLog.LogBadRequest(w, r, "decode group", err, err.Error())
//		return
//	}
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// BodyError describes why a request body could not be decoded.
type BodyError struct {
	Msg string
	Err error
}

func (e *BodyError) Error() string { return e.Msg }
func (e *BodyError) Unwrap() error { return e.Err }

// Decode reads exactly one JSON object from r's body into v. Unknown
// fields are rejected.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &BodyError{Msg: "Request body must not be empty.", Err: err}
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return &BodyError{Msg: "Request body contains malformed JSON.", Err: err}
		case errors.As(err, &typeErr):
			return &BodyError{Msg: fmt.Sprintf("Field %q has the wrong type.", typeErr.Field), Err: err}
		case errors.As(err, &maxErr):
			return &BodyError{Msg: "Request body is too large.", Err: err}
		default:
			// Unknown fields and other decoder errors.
			return &BodyError{Msg: err.Error(), Err: err}
		}
	}
	if dec.More() {
		return &BodyError{Msg: "Request body must contain a single JSON object."}
	}
	return nil
}
