package share

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Scheme prefixes share links, e.g. sketchboard://192.168.1.20:8888.
const Scheme = "sketchboard://"

// FormatLink builds the link peers use to join a host.
func FormatLink(host string, port int) string {
	return Scheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// IsLink reports whether s looks like a share link.
func IsLink(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// ParseLink returns the host:port address inside a share link.
func ParseLink(link string) (string, error) {
	if !IsLink(link) {
		return "", fmt.Errorf("%w: %q has no %s prefix", ErrBadLink, link, Scheme)
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, Scheme), "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	if host == "" {
		return "", fmt.Errorf("%w: missing host", ErrBadLink)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return "", fmt.Errorf("%w: bad port %q", ErrBadLink, port)
	}
	return addr, nil
}
