package session

import (
	"fmt"
	"net/url"
)

// ChannelPath is the fixed path of the notification channel endpoint.
const ChannelPath = "/notifications"

// EndpointURL derives the channel URL from the application base URL. The
// channel scheme mirrors the page's transport security: an https
// deployment gets wss, plain http gets ws. The identity token rides as a
// query parameter.
func EndpointURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("session: parse base url: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("session: unsupported scheme %q in base url", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("session: base url %q has no host", base)
	}
	u.Path = ChannelPath
	u.RawQuery = ""
	if token != "" {
		q := url.Values{}
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
