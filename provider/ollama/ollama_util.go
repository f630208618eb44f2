package ollama

import (
	"errors"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidHostPort = errors.New("invalid port specified in OLLAMA_HOST")

// parseHost resolves an Ollama address the way the ollama CLI reads
// OLLAMA_HOST: the scheme defaults to http, the host to 127.0.0.1 and the
// port to 11434 (80 or 443 when only a scheme is given).
func parseHost(hostVar string) (*url.URL, error) {
	defaultPort := "11434"

	hostVar = strings.TrimSpace(strings.Trim(strings.TrimSpace(hostVar), "\"'"))

	scheme, hostport, ok := strings.Cut(hostVar, "://")
	switch {
	case !ok:
		scheme, hostport = "http", hostVar
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	// trim trailing slashes
	hostport = strings.TrimRight(hostport, "/")

	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	u := &url.URL{Scheme: scheme, Host: net.JoinHostPort(host, port)}
	if portNum, err := strconv.ParseInt(port, 10, 32); err != nil || portNum > 65535 || portNum < 0 {
		u.Host = net.JoinHostPort(host, defaultPort)
		return u, ErrInvalidHostPort
	}
	return u, nil
}

// getOllamaHost reads OLLAMA_HOST.
func getOllamaHost() (*url.URL, error) {
	return parseHost(os.Getenv("OLLAMA_HOST"))
}
