package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUnexpectedShape is returned when a list response is neither an array nor
// an object wrapping one.
var ErrUnexpectedShape = errors.New("list response is not an array")

// envelopeKeys are the object members that may hold a list payload, in the
// order they are tried.
var envelopeKeys = []string{"data", "items", "results", "data.items"}

// ListPayload returns the raw JSON array held by body. The backend answers
// list endpoints with either a bare array or an envelope object. An empty or
// null body is an empty list.
func ListPayload(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return []byte("[]"), nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnexpectedShape)
	}

	root := gjson.ParseBytes(body)
	switch {
	case root.Type == gjson.Null:
		return []byte("[]"), nil
	case root.IsArray():
		return []byte(root.Raw), nil
	case root.IsObject():
		for _, key := range envelopeKeys {
			r := root.Get(key)
			if r.IsArray() {
				return []byte(r.Raw), nil
			}
			if r.Exists() && r.Type == gjson.Null {
				return []byte("[]"), nil
			}
		}
	}
	return nil, ErrUnexpectedShape
}

// DecodeList unmarshals a list response into records of type T.
func DecodeList[T any](body []byte) ([]T, error) {
	payload, err := ListPayload(body)
	if err != nil {
		return nil, err
	}
	var rv []T
	if err := json.Unmarshal(payload, &rv); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	if rv == nil {
		rv = []T{}
	}
	return rv, nil
}

// FetchList loads and decodes a collection endpoint.
func FetchList[T any](ctx context.Context, api API, path string, query map[string]string) ([]T, error) {
	body, err := api.List(ctx, path, query)
	if err != nil {
		return nil, err
	}
	rv, err := DecodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return rv, nil
}
