package fetch

import "net/http"

// Identity is a header set mimicking a particular browser and platform.
type Identity struct {
	Name    string            `yaml:"name" json:"name" toml:"name"`
	Headers map[string]string `yaml:"headers" json:"headers" toml:"headers"`
}

func (id Identity) apply(h http.Header) {
	for k, v := range id.Headers {
		h.Set(k, v)
	}
}

// DefaultIdentities is the built-in pool used when none is configured.
func DefaultIdentities() []Identity {
	return []Identity{
		{Name: "chrome-windows", Headers: map[string]string{
			"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			"Accept":             "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":    "en-US,en;q=0.9",
			"Sec-Ch-Ua-Platform": `"Windows"`,
		}},
		{Name: "safari-macos", Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-GB,en;q=0.9",
		}},
		{Name: "firefox-linux", Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-AU,en;q=0.7",
		}},
		{Name: "edge-windows", Headers: map[string]string{
			"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
			"Accept":             "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language":    "en-CA,en;q=0.8",
			"Sec-Ch-Ua-Platform": `"Windows"`,
		}},
	}
}
