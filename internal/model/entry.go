// Package model defines the core memory data types.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEntry is returned when an entry lacks a question or a response.
var ErrInvalidEntry = errors.New("invalid memory entry")

// Placeholder is stored as the response of a question the bot could not answer yet.
const Placeholder = "Je vais m'en souvenir."

// Entry is one memorized question/response pair.
type Entry struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// rawEntry uses pointers so that missing keys can be told apart from empty strings.
type rawEntry struct {
	Question *string `json:"question"`
	Response *string `json:"response"`
}

// DecodeEntries parses a JSON array of entries. Every element must carry
// both a string "question" and a string "response".
func DecodeEntries(data []byte) ([]Entry, error) {
	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for i, r := range raw {
		if r.Question == nil || r.Response == nil {
			return nil, fmt.Errorf("entry %d: %w", i, ErrInvalidEntry)
		}
		entries = append(entries, Entry{Question: *r.Question, Response: *r.Response})
	}
	return entries, nil
}

// EncodeEntries renders entries as an indented JSON array. Non-ASCII and
// HTML characters are written as-is.
func EncodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}
	return buf.Bytes(), nil
}
