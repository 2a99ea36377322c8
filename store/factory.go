package store

import (
	"fmt"

	"storefront/domain"
)

// NewStore constructs a domain.Store by kind: "memory" or "file".
// For file store, provide the file path in path; for memory, path is ignored.
func NewStore(kind, path string) (domain.Store, error) {
	switch kind {
	case "memory", "mem":
		return NewMemoryStore(), nil
	case "file":
		if path == "" {
			return nil, fmt.Errorf("file path required for file store")
		}
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown store kind: %s", kind)
	}
}
