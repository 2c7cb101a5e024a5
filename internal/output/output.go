package output

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"reddit-fetcher/internal/models"
)

type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSONL, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (choose from jsonl, json)", s)
	}
}

// Write renders posts to w. JSONL streams one object per line as posts
// arrive; JSON collects the whole sequence first and writes one indented
// array, so nothing is written if the sequence fails.
func Write(w io.Writer, format Format, posts iter.Seq2[models.Post, error]) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	switch format {
	case FormatJSONL:
		for post, err := range posts {
			if err != nil {
				return err
			}
			if err := enc.Encode(post); err != nil {
				return fmt.Errorf("encode post: %w", err)
			}
		}
		return nil
	case FormatJSON:
		all := make([]models.Post, 0)
		for post, err := range posts {
			if err != nil {
				return err
			}
			all = append(all, post)
		}
		enc.SetIndent("", "  ")
		if err := enc.Encode(all); err != nil {
			return fmt.Errorf("encode posts: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
