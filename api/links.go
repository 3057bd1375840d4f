package api

import (
	"strings"

	"github.com/tomnomnom/linkheader"
)

const RelNext = "next"

// ParseLinkHeader maps each relation of an RFC 8288 Link header to its
// target. A relation attribute may carry several space separated names;
// the first link naming a relation wins.
func ParseLinkHeader(header string) map[string]string {
	result := make(map[string]string)
	if strings.TrimSpace(header) == "" {
		return result
	}

	for _, link := range linkheader.Parse(header) {
		if link.URL == "" {
			continue
		}
		for _, rel := range strings.Fields(strings.ToLower(link.Rel)) {
			if _, ok := result[rel]; !ok {
				result[rel] = link.URL
			}
		}
	}

	return result
}
