package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func LoadFixture(filename string) (json.RawMessage, error) {
	// Get the directory of the current file
	_, currentFile, _, _ := runtime.Caller(0)
	dir := filepath.Dir(currentFile)

	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// ListingPage builds a listing body holding one post per id. An empty after
// is rendered as null.
func ListingPage(after string, ids ...string) string {
	children := make([]string, 0, len(ids))
	for _, id := range ids {
		children = append(children, fmt.Sprintf(`{"kind":"t3","data":{"id":%q,"title":"Post %s","score":1}}`, id, id))
	}

	cursor := "null"
	if after != "" {
		cursor = fmt.Sprintf("%q", after)
	}

	return fmt.Sprintf(`{"kind":"Listing","data":{"children":[%s],"after":%s}}`, strings.Join(children, ","), cursor)
}
