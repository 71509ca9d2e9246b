package review

import (
	"net/http"

	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
)

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithLogger sets the logger used to report reconciliations.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// ClientOption applies a configuration option to a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}
