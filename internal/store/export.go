package store

import (
	"context"
	"fmt"
	"io"

	"github.com/rcliao/monchatbot/internal/model"
)

// Export writes all entries of s to w in the persisted file layout.
func Export(ctx context.Context, s Store, w io.Writer) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return fmt.Errorf("read entries: %w", err)
	}
	data, err := model.EncodeEntries(entries)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Import validates the JSON array read from r and appends every entry in
// order. The store bound still applies, so only the newest entries survive
// a large import. It returns the number of entries appended.
func Import(ctx context.Context, s Store, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}
	entries, err := model.DecodeEntries(data)
	if err != nil {
		return 0, err
	}
	imported := 0
	for _, e := range entries {
		if err := s.Append(ctx, e); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
