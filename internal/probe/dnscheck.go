package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

var dnsTimeout = 3 * time.Second

// DNSClass resolves host and classifies the result so a network error can
// say why: "RESOLVES" | "NO_A_RECORD" | "NXDOMAIN" | "SERVFAIL_or_TIMEOUT" |
// "INVALID_NAME". Diagnosis only; never changes how an outcome classifies.
func DNSClass(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.Contains(host, "://") {
		return "INVALID_NAME"
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()
	r := &net.Resolver{} // OS resolver

	ips, err := r.LookupIP(ctx, "ip", host)
	if err == nil {
		if len(ips) > 0 {
			return "RESOLVES"
		}
		return "NO_A_RECORD"
	}

	var de *net.DNSError
	if errors.As(err, &de) && de.IsNotFound {
		return "NXDOMAIN"
	}
	return "SERVFAIL_or_TIMEOUT"
}
