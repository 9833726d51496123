package evidence

import (
	"strings"

	"github.com/riskradar/backend-go/internal/domain"
)

// resourceIndex maps lowercased identifiers (resource ID, name, aliases)
// to resource IDs for host resolution
type resourceIndex map[string]string

func buildIndex(resources []domain.Resource) resourceIndex {
	idx := make(resourceIndex, len(resources)*2)
	for _, r := range resources {
		idx[strings.ToLower(r.ID)] = r.ID
		if r.Name != "" {
			idx[strings.ToLower(r.Name)] = r.ID
		}
		for _, a := range r.Aliases {
			idx[strings.ToLower(a)] = r.ID
		}
	}
	return idx
}

// resolve maps a hostname (optionally with port or domain suffix) to a
// known resource ID
func (idx resourceIndex) resolve(host string) (string, bool) {
	h := strings.ToLower(host)
	if i := strings.IndexByte(h, ':'); i >= 0 {
		h = h[:i]
	}
	if id, ok := idx[h]; ok {
		return id, true
	}
	// fall back to the first DNS label: orders-db.internal.example.com -> orders-db
	if i := strings.IndexByte(h, '.'); i > 0 {
		if id, ok := idx[h[:i]]; ok {
			return id, true
		}
	}
	return "", false
}
