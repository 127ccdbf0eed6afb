package fetch

import (
	"net/url"
	"strings"
)

// Tokens holds optional bearer tokens for the supported model hosts. An empty
// token means requests to that host go out unauthenticated.
type Tokens struct {
	Civitai     string
	HuggingFace string
}

// HeadersFor derives the request headers for a URL. Civitai downloads need a
// token for most models; the Hugging Face token is ignored by public
// endpoints but required for gated repos.
func (t Tokens) HeadersFor(rawURL string) map[string]string {
	headers := map[string]string{}

	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	if civ := strings.TrimSpace(t.Civitai); civ != "" && strings.Contains(host, "civitai.com") {
		headers["Authorization"] = "Bearer " + civ
	}

	if hf := strings.TrimSpace(t.HuggingFace); hf != "" &&
		(strings.Contains(host, "huggingface.co") || strings.Contains(host, "hf.co")) {
		headers["Authorization"] = "Bearer " + hf
	}

	return headers
}
