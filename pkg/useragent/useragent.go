// Package useragent builds the User-Agent header sent to the Spotify Web API
// and to the preview CDN.
package useragent

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/toozej/spotifyclone/pkg/version"
)

// Product is the product token at the start of the User-Agent.
const Product = "spotifyclone"

// String returns the User-Agent for the running binary, for example
// "spotifyclone/v1.2.3 (linux; amd64)".
func String() string {
	return WithVersion(version.Version)
}

// WithVersion builds the User-Agent for an explicit version. An empty
// version is reported as "dev".
func WithVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		v = "dev"
	}
	return fmt.Sprintf("%s/%s (%s; %s)", Product, v, runtime.GOOS, runtime.GOARCH)
}
