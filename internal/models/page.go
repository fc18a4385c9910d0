package models

import (
	"bytes"
	"encoding/json"

	"github.com/sangamsetu/casedesk/internal/errors"
)

// Page is a list response. The case service answers either with a paginated envelope or a bare array.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageEnvelope has the fields of Page without its UnmarshalJSON method.
type pageEnvelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []T
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return errors.Wrap(err, "decode list")
		}
		*p = Page[T]{Count: len(results), Next: nil, Previous: nil, Results: results}
		return nil
	}

	var e pageEnvelope[T]
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return errors.Wrap(err, "decode page")
	}
	*p = Page[T](e)
	if p.Count == 0 {
		p.Count = len(p.Results)
	}
	return nil
}
