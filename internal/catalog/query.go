package catalog

import "net/url"

// Query parameter names understood by the listing endpoint.
const (
	ParamKind  = "kind"
	ParamQuery = "q"
)

// BuildParams converts a filter selection into listing parameters. The
// search text is passed verbatim; the service does its own normalisation.
func BuildParams(f FilterState) url.Values {
	params := url.Values{}
	if tab := f.ActiveTab(); tab != TabAll {
		params.Set(ParamKind, string(tab))
	}
	if f.SearchText != "" {
		params.Set(ParamQuery, f.SearchText)
	}
	return params
}
