package http

import (
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultCookieName   = "analytics_token"
	DefaultCookieMaxAge = time.Hour
)

// CookieConfig shapes the cross-subdomain cookie written by the direct flow.
type CookieConfig struct {
	Name string

	// ParentDomain is the shared registrable domain, e.g. "example.com".
	// The Domain attribute is only set for hosts under it.
	ParentDomain string

	MaxAge time.Duration
}

// Cookie builds the token cookie for a request arriving on r.Host.
func (c CookieConfig) Cookie(r *http.Request, token string) *http.Cookie {
	name := c.Name
	if name == "" {
		name = DefaultCookieName
	}
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultCookieMaxAge
	}

	host := requestHost(r)
	cookie := &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
		Secure:   host != "localhost",
	}

	parent := strings.ToLower(strings.TrimPrefix(c.ParentDomain, "."))
	if parent != "" && (host == parent || strings.HasSuffix(host, "."+parent)) {
		cookie.Domain = "." + parent
	}
	return cookie
}

func requestHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}
