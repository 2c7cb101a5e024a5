// internal/parser/interface.go
package parser

import (
	"context"
	"encoding/json"

	"reddit-fetcher/internal/models"
)

type ParserInterface interface {
	ParseListing(ctx context.Context, data json.RawMessage) (models.Page, error)
}
