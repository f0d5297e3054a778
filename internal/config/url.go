package config

import "strings"

// NormalizeBaseURL canonicalizes a user-supplied Portainer URL so that
// appending /api/<route> always yields a valid endpoint. It strips any
// query string, trailing slashes, and a rightmost /api (or /api/...)
// suffix. The function is idempotent.
//
// Known limitation: only the rightmost /api segment is stripped. A reverse
// proxy that mounts Portainer under a path which itself ends in /api is
// normalized one level too far; there is no way to tell the two apart from
// the string alone.
func NormalizeBaseURL(raw string) string {
	u := raw

	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}

	u = strings.TrimRight(u, "/")

	if strings.HasSuffix(u, "/api") {
		u = strings.TrimSuffix(u, "/api")
	} else if i := strings.LastIndex(u, "/api/"); i >= 0 {
		u = u[:i]
	}

	return strings.TrimRight(u, "/")
}
