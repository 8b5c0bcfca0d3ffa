package proxy

import "net/url"

// chromeBaseline is the Chrome 133 desktop header set presented on
// every outbound request.
var chromeBaseline = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
	"Accept-Encoding":    "gzip, deflate, br, zstd",
	"Cache-Control":      "no-cache",
	"Pragma":             "no-cache",
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Sec-Ch-Ua":          `"Not(A:Brand";v="99", "Google Chrome";v="133", "Chromium";v="133"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"macOS"`,
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-site",
}

// HeaderComposer builds the outbound header set for each hop: the
// browser identity baseline, Origin and Referer derived from the
// current URL, then caller overrides on top. Composition is pure and
// is recomputed per redirect hop so Origin and Referer track the hop
// URL.
type HeaderComposer struct {
	baseline map[string]string
}

// NewHeaderComposer returns a composer for the given profile. Unknown
// profiles fall back to the Chrome baseline; the profile name is an
// identity label, not a switch between divergent header sets.
func NewHeaderComposer(profile string) *HeaderComposer {
	return &HeaderComposer{baseline: chromeBaseline}
}

// Compose returns the headers for a request to target. Overrides win
// over both the baseline and the derived Origin/Referer.
func (hc *HeaderComposer) Compose(target *url.URL, overrides map[string]string) map[string]string {
	headers := make(map[string]string, len(hc.baseline)+len(overrides)+2)
	for key, value := range hc.baseline {
		headers[key] = value
	}

	origin := target.Scheme + "://" + target.Host
	headers["Origin"] = origin
	headers["Referer"] = origin + "/"

	for key, value := range overrides {
		headers[key] = value
	}

	return headers
}
