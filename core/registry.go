package core

import "sort"

// TypeRegistry maps lowercase type keywords to type tags. It is built from
// the TypeTag keyword table and is read-only after construction.
type TypeRegistry struct {
	keywords map[string]TypeTag
}

// NewTypeRegistry returns a registry holding every type keyword.
func NewTypeRegistry() *TypeRegistry {
	keywords := make(map[string]TypeTag, numTypeTags)
	for _, tag := range TypeTags() {
		keywords[tag.Keyword()] = tag
	}
	return &TypeRegistry{keywords: keywords}
}

// Lookup is an exact, case-sensitive match.
func (registry *TypeRegistry) Lookup(keyword string) (TypeTag, bool) {
	tag, ok := registry.keywords[keyword]
	return tag, ok
}

// Keywords returns the recognized keywords in sorted order.
func (registry *TypeRegistry) Keywords() []string {
	keywords := make([]string, 0, len(registry.keywords))
	for keyword := range registry.keywords {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	return keywords
}
