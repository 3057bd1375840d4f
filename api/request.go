package api

import "net/url"

// Request describes one logical list fetch: the resource path, its query
// parameters and an optional whitelist of fields to keep on every record.
type Request struct {
	Path      string
	Params    url.Values
	Whitelist []string
}
