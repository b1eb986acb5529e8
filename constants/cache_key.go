package constants

import "strings"

// CacheKey cache key definition.
// format "keymint:<name>:<version>:<id>"
type CacheKey struct {
	Name    string
	Version string
}

func (c CacheKey) Build(id string) string {
	var sb strings.Builder
	sb.WriteString("keymint:")
	sb.WriteString(c.Name)
	sb.WriteString(":")
	sb.WriteString(c.Version)
	sb.WriteString(":")
	sb.WriteString(id)
	return sb.String()
}

var (
	ValidityCacheKey = CacheKey{"validity", "v1"}
)
