// Package decode recovers a JSON object embedded in free-text model output.
//
// Model replies often wrap the payload in prose ("Here is my analysis: {...} Hope this helps").
// Parse takes the span from the first '{' to the last '}' and parses it as one object.
// It is a best-effort heuristic: braces in the surrounding prose or several candidate
// objects in one reply defeat it, and the caller then gets a ParseFailure carrying the raw text.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseFailedMessage is the "error" value of the sentinel object.
const ParseFailedMessage = "Parse failed"

// Result is either Ok(object) or ParseFailure(raw). The zero value is a ParseFailure of "".
type Result struct {
	object map[string]any
	raw    string
	ok     bool
}

// Ok wraps a decoded object.
func Ok(object map[string]any) Result {
	if object == nil {
		object = map[string]any{}
	}
	return Result{object: object, ok: true}
}

// Failure wraps text that held no recoverable object.
func Failure(raw string) Result {
	return Result{raw: raw}
}

// Parse extracts the object spanning the first '{' through the last '}' of raw.
// It never panics and never returns an error: anything unrecoverable is a Failure.
func Parse(raw string) Result {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || start >= end {
		return Failure(raw)
	}
	object, err := decodeObject([]byte(raw[start : end+1]))
	if err != nil {
		return Failure(raw)
	}
	return Ok(object)
}

// decodeObject parses data as exactly one JSON object. Numbers are kept as
// json.Number so integers of any size survive a round trip unchanged.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var object map[string]any
	if err := dec.Decode(&object); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode: trailing data after object")
	}
	if object == nil {
		return nil, errors.New("decode: not an object")
	}
	return object, nil
}

// OK reports whether the result holds a decoded object.
func (r Result) OK() bool { return r.ok }

// Object returns the decoded object, or nil for a failure.
func (r Result) Object() map[string]any {
	if !r.ok {
		return nil
	}
	return r.object
}

// Raw returns the original text of a failure, or "" for a decoded object.
func (r Result) Raw() string {
	if r.ok {
		return ""
	}
	return r.raw
}

// String returns the value of key when the object holds a string there.
func (r Result) String(key string) (string, bool) {
	if !r.ok {
		return "", false
	}
	s, ok := r.object[key].(string)
	return s, ok
}

// Into copies the decoded object into v through a JSON round trip. Numbers
// reach v as written, so they fill float, integer or json.Number fields alike.
func (r Result) Into(v any) error {
	if !r.ok {
		return fmt.Errorf("decode: %s", ParseFailedMessage)
	}
	data, err := json.Marshal(r.object)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Sentinel is the fixed-shape object that stands in for a failure on the wire.
func Sentinel(raw string) map[string]any {
	return map[string]any{"error": ParseFailedMessage, "raw": raw}
}

// MarshalJSON renders the object, or the sentinel for a failure.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.ok {
		return json.Marshal(r.object)
	}
	return json.Marshal(Sentinel(r.raw))
}

// UnmarshalJSON reads back what MarshalJSON wrote. Only the exact sentinel shape
// becomes a failure; any other object is Ok.
func (r *Result) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Result{}
		return nil
	}
	object, err := decodeObject(data)
	if err != nil {
		return err
	}
	if raw, ok := sentinelRaw(object); ok {
		*r = Failure(raw)
		return nil
	}
	*r = Ok(object)
	return nil
}

func sentinelRaw(object map[string]any) (string, bool) {
	if len(object) != 2 || object["error"] != ParseFailedMessage {
		return "", false
	}
	raw, ok := object["raw"].(string)
	return raw, ok
}
