package devenv

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
)

// jupyterURL matches the server URLs Jupyter prints on start-up, e.g.
//
//	http://127.0.0.1:8888/lab?token=3f2c...
//	http://7f1c2d3e4b5a:8888/tree?token=3f2c...
var jupyterURL = regexp.MustCompile(`https?://[A-Za-z0-9.\-\[\]:]+:\d+/[^\s"'<>]*`)

// loopbackHosts are preferred over container-hostname URLs because only
// loopback URLs are meaningful once rewritten to the published port.
var loopbackHosts = map[string]bool{"127.0.0.1": true, "localhost": true}

// JupyterURL returns the newest notebook server URL in logs, rewritten to
// reach the container through hostPort on localhost. A zero hostPort
// keeps the logged port.
func JupyterURL(logs string, hostPort int) (string, bool) {
	matches := jupyterURL.FindAllString(logs, -1)
	if len(matches) == 0 {
		return "", false
	}

	chosen := ""
	for i := len(matches) - 1; i >= 0; i-- {
		u, err := url.Parse(matches[i])
		if err != nil {
			continue
		}
		if chosen == "" {
			chosen = matches[i]
		}
		if loopbackHosts[u.Hostname()] {
			chosen = matches[i]
			break
		}
	}
	if chosen == "" {
		return "", false
	}

	u, err := url.Parse(chosen)
	if err != nil {
		return "", false
	}
	port := u.Port()
	if hostPort > 0 {
		port = strconv.Itoa(hostPort)
	}
	u.Host = net.JoinHostPort("localhost", port)
	return u.String(), true
}
