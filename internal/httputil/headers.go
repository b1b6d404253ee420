package httputil

import "net/http"

// HTMLHeaders returns the Accept defaults for HTML endpoints. Identity
// headers (User-Agent, client hints) come from the persona, not from here.
func HTMLHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	return h
}

// JSONHeaders returns the Accept defaults for JSON endpoints.
func JSONHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	return h
}
