package api

import (
	"mime"
	"net"
	"net/http"
	"strings"
)

// RequestInfo is the request metadata reported by GET /request-info.
// It is populated explicitly from the *http.Request for each call.
type RequestInfo struct {
	Server      string   `json:"server"`
	Host        *string  `json:"host"`
	UserAgent   *string  `json:"user_agent"`
	URL         string   `json:"url"`
	AccessRoute []string `json:"access_route"`
	FullPath    string   `json:"full_path"`
	IsJSON      bool     `json:"is_json"`
	IsSecure    bool     `json:"is_secure"`
	CookieCount int      `json:"cookie_count"`
}

// NewRequestInfo extracts RequestInfo from r.
func NewRequestInfo(r *http.Request) RequestInfo {
	return RequestInfo{
		Server:      serverAddr(r),
		Host:        optional(r.Host),
		UserAgent:   optional(r.Header.Get("User-Agent")),
		URL:         requestScheme(r) + "://" + r.Host + r.URL.RequestURI(),
		AccessRoute: accessRoute(r),
		FullPath:    r.URL.EscapedPath() + "?" + r.URL.RawQuery,
		IsJSON:      isJSONContentType(r.Header.Get("Content-Type")),
		IsSecure:    r.TLS != nil,
		CookieCount: cookieCount(r),
	}
}

// serverAddr is the local address the connection was accepted on, falling
// back to the Host header when the request did not come through a listener.
func serverAddr(r *http.Request) string {
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok && addr != nil {
		return addr.String()
	}
	return r.Host
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// accessRoute lists X-Forwarded-For hops when present, otherwise the peer IP.
func accessRoute(r *http.Request) []string {
	if forwarded := r.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		var route []string
		for _, hop := range strings.Split(strings.Join(forwarded, ","), ",") {
			route = append(route, strings.TrimSpace(hop))
		}
		return route
	}
	if r.RemoteAddr == "" {
		return []string{}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return []string{r.RemoteAddr}
	}
	return []string{host}
}

// isJSONContentType accepts application/json and application/*+json.
func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" ||
		(strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}

// cookieCount counts distinct cookie names.
func cookieCount(r *http.Request) int {
	seen := make(map[string]struct{})
	for _, c := range r.Cookies() {
		seen[c.Name] = struct{}{}
	}
	return len(seen)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
