package http

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURL appends path to the path of baseURL and encodes query onto it.
func BuildURL(baseURL, path string, query url.Values) (string, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("error parsing base URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// RedactURL replaces the values of the named query parameters with "REDACTED".
// Unparseable input is returned unchanged.
func RedactURL(raw string, params ...string) string {
	if len(params) == 0 {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for _, name := range params {
		if q.Has(name) {
			q.Set(name, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}
