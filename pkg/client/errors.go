package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Connection error kinds reported by ConnectionError.Kind.
const (
	KindDNS      = "dns"
	KindRefused  = "refused"
	KindTimeout  = "timeout"
	KindTLS      = "tls"
	KindCanceled = "canceled"
	KindOther    = "other"
)

// ConnectionError is a transport-level failure while establishing or reading
// a stream. It is terminal for the request; the client never retries.
type ConnectionError struct {
	// Op is "connect" or "read".
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Kind classifies the underlying cause.
func (e *ConnectionError) Kind() string {
	var (
		dnsErr      *net.DNSError
		netErr      net.Error
		recordErr   tls.RecordHeaderError
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
	)

	switch {
	case errors.Is(e.Err, context.Canceled):
		return KindCanceled
	case errors.As(e.Err, &dnsErr):
		return KindDNS
	case errors.Is(e.Err, syscall.ECONNREFUSED):
		return KindRefused
	case errors.Is(e.Err, context.DeadlineExceeded),
		errors.As(e.Err, &netErr) && netErr.Timeout():
		return KindTimeout
	case errors.As(e.Err, &recordErr),
		errors.As(e.Err, &verifyErr),
		errors.As(e.Err, &unknownAuth),
		errors.As(e.Err, &hostnameErr):
		return KindTLS
	default:
		return KindOther
	}
}

// IsConnectionError reports whether err is, or wraps, a *ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
