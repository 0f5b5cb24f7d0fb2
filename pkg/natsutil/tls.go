package natsutil

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/carverauto/autochecks/pkg/models"
)

var (
	// ErrMTLSRequired means the TLS block lacks a certificate, key or CA file.
	ErrMTLSRequired = errors.New("mtls security required")
	// ErrCAParsingFailed means the CA file holds no usable PEM certificate.
	ErrCAParsingFailed = errors.New("failed to parse CA certificate")
	// ErrNATSNotConfigured is returned when events are enabled without NATS settings.
	ErrNATSNotConfigured = errors.New("nats is not configured")
)

// TLSConfig builds the client side of an mTLS connection to NATS. All three
// files are required; TLS 1.3 is the minimum.
func TLSConfig(files *models.NATSTLSConfig) (*tls.Config, error) {
	if files == nil {
		return nil, ErrMTLSRequired
	}

	for _, path := range []string{files.CertFile, files.KeyFile, files.CAFile} {
		if path == "" {
			return nil, ErrMTLSRequired
		}
	}

	pair, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load client key pair %s: %w", files.CertFile, err)
	}

	roots, err := loadRoots(files.CAFile)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		ServerName:   files.ServerName,
		RootCAs:      roots,
		Certificates: []tls.Certificate{pair},
	}, nil
}

func loadRoots(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA bundle %s: %w", path, err)
	}

	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: %s", ErrCAParsingFailed, path)
	}

	return roots, nil
}
