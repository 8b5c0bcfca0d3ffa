package client

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// recordingJar wraps a cookiejar.Jar so the full cookie set can be
// enumerated. net/http's jar only exposes per-URL lookups; the proxy
// API needs the whole set. Every SetCookies call is mirrored into a
// flat name to value map before delegation.
type recordingJar struct {
	jar *cookiejar.Jar

	mu       sync.RWMutex
	recorded map[string]string
}

func newRecordingJar() (*recordingJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &recordingJar{
		jar:      jar,
		recorded: make(map[string]string),
	}, nil
}

// SetCookies implements http.CookieJar.
func (rj *recordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	rj.mu.Lock()
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		// MaxAge<0 is a deletion per RFC 6265
		if c.MaxAge < 0 {
			delete(rj.recorded, c.Name)
			continue
		}
		rj.recorded[c.Name] = c.Value
	}
	rj.mu.Unlock()

	rj.jar.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (rj *recordingJar) Cookies(u *url.URL) []*http.Cookie {
	return rj.jar.Cookies(u)
}

// Snapshot returns a copy of the recorded name to value map.
func (rj *recordingJar) Snapshot() map[string]string {
	rj.mu.RLock()
	defer rj.mu.RUnlock()

	out := make(map[string]string, len(rj.recorded))
	for name, value := range rj.recorded {
		out[name] = value
	}
	return out
}
