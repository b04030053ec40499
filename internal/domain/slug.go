package domain

import "regexp"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lowercase, hyphen-separated slug.
func ValidSlug(s string) bool {
	return len(s) > 0 && len(s) <= 63 && slugPattern.MatchString(s)
}

// pageSlugAliases lists page slugs that historical content used
// interchangeably. Lookup is symmetric. Only pairs observed in real content
// belong here; there is no generic singular/plural matching.
var pageSlugAliases = map[string]string{
	"services": "service",
	"service":  "services",
}

// PageSlugAlias returns the alternate slug to retry when slug is not found.
func PageSlugAlias(slug string) (string, bool) {
	alias, ok := pageSlugAliases[slug]
	return alias, ok
}
