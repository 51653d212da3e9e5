package gateway

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewProxy builds a reverse proxy to the backend that stamps the configured
// API key onto every forwarded request, so gateway clients never hold keys
// themselves.
func NewProxy(upstream *url.URL, keyHeader, apiKey string) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)

	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		if apiKey != "" {
			r.Header.Set(keyHeader, apiKey)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy error: %v", err)
		http.Error(w, `{"error":"bad gateway"}`, http.StatusBadGateway)
	}
	return proxy
}
