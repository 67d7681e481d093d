package model

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeEntries(t *testing.T) {
	entries, err := DecodeEntries([]byte(`[{"question": "a", "response": ""}, {"question": "b", "response": "c", "extra": 1}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].Response != "" || entries[1].Question != "b" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	_, err = DecodeEntries([]byte(`[{"question": "a"}]`))
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestEncodeEntriesEmpty(t *testing.T) {
	data, err := EncodeEntries(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty array, got %q", data)
	}
}
