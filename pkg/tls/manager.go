package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flivyn/flivynterm/pkg/configuration"
	"github.com/flivyn/flivynterm/pkg/logger"

	"golang.org/x/crypto/acme/autocert"
)

// Config selects how the server gets its certificate.
type Config struct {
	EnableTLS          bool
	EnableLetsEncrypt  bool
	Domain             string
	LetsEncryptEmail   string
	CertCacheDir       string
	CertFile           string
	KeyFile            string
	HTTPSPort          string
	ForceHTTPSRedirect bool
}

// ConfigFromSettings reads the [TLS] section.
func ConfigFromSettings() Config {
	return Config{
		EnableTLS:          configuration.GetBool("TLS", "enable_tls", false),
		EnableLetsEncrypt:  configuration.GetBool("TLS", "enable_letsencrypt", false),
		Domain:             strings.TrimSpace(configuration.GetString("TLS", "domain", "")),
		LetsEncryptEmail:   strings.TrimSpace(configuration.GetString("TLS", "letsencrypt_email", "")),
		CertCacheDir:       configuration.GetString("TLS", "cert_cache_dir", "./certs"),
		CertFile:           configuration.GetString("TLS", "cert_file", "./certs/server.crt"),
		KeyFile:            configuration.GetString("TLS", "key_file", "./certs/server.key"),
		HTTPSPort:          configuration.GetString("TLS", "https_port", "8443"),
		ForceHTTPSRedirect: configuration.GetBool("TLS", "force_https_redirect", false),
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if !c.EnableTLS {
		return nil
	}
	if c.EnableLetsEncrypt {
		if c.Domain == "" {
			return fmt.Errorf("domain is required when Let's Encrypt is enabled")
		}
		if c.LetsEncryptEmail == "" {
			return fmt.Errorf("letsencrypt_email is required when Let's Encrypt is enabled")
		}
		return nil
	}
	if c.CertFile == "" || c.KeyFile == "" {
		return fmt.Errorf("cert_file and key_file are required for manual TLS")
	}
	return nil
}

// Manager owns the server's tls.Config.
type Manager struct {
	config    Config
	autocert  *autocert.Manager
	tlsConfig *tls.Config
}

// NewManager validates cfg and prepares certificates. With TLS enabled and
// no Let's Encrypt, missing certificate files are replaced by a self-signed
// pair so a development server can start.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("TLS configuration validation failed: %w", err)
	}
	m := &Manager{config: cfg}
	if !cfg.EnableTLS {
		return m, nil
	}

	if cfg.EnableLetsEncrypt {
		if err := m.initLetsEncrypt(); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err := m.initManual(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initLetsEncrypt() error {
	logger.ConfigInfo("Initializing Let's Encrypt for domain %s", m.config.Domain)
	if err := os.MkdirAll(m.config.CertCacheDir, 0o700); err != nil {
		return fmt.Errorf("failed to create certificate cache directory: %w", err)
	}

	m.autocert = &autocert.Manager{
		Cache:      autocert.DirCache(m.config.CertCacheDir),
		Prompt:     autocert.AcceptTOS,
		Email:      m.config.LetsEncryptEmail,
		HostPolicy: autocert.HostWhitelist(m.config.Domain, "www."+m.config.Domain),
	}
	m.tlsConfig = m.autocert.TLSConfig()
	m.tlsConfig.MinVersion = tls.VersionTLS12
	return nil
}

func (m *Manager) initManual() error {
	_, certErr := os.Stat(m.config.CertFile)
	_, keyErr := os.Stat(m.config.KeyFile)
	if os.IsNotExist(certErr) || os.IsNotExist(keyErr) {
		logger.ConfigWarn("TLS certificate missing, generating a self-signed one at %s", m.config.CertFile)
		host := m.config.Domain
		if host == "" {
			host = "localhost"
		}
		if err := GenerateSelfSignedCert(m.config.CertFile, m.config.KeyFile, host, 365*24*time.Hour); err != nil {
			return err
		}
	}

	cert, err := tls.LoadX509KeyPair(m.config.CertFile, m.config.KeyFile)
	if err != nil {
		return fmt.Errorf("load certificate: %w", err)
	}
	m.tlsConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"h2", "http/1.1"},
	}
	logger.ConfigInfo("Manual TLS initialized with %s", m.config.CertFile)
	return nil
}

func (m *Manager) Enabled() bool { return m.config.EnableTLS }

// TLSConfig returns nil when TLS is disabled.
func (m *Manager) TLSConfig() *tls.Config {
	if !m.config.EnableTLS {
		return nil
	}
	return m.tlsConfig
}

func (m *Manager) HTTPSPort() string { return m.config.HTTPSPort }

// NeedsHTTPServer is true when plain HTTP must stay up for ACME challenges
// or redirects.
func (m *Manager) NeedsHTTPServer() bool {
	return m.config.EnableTLS && (m.config.EnableLetsEncrypt || m.config.ForceHTTPSRedirect)
}

// HTTPHandler serves ACME challenges and otherwise redirects to HTTPS
// (when forced) or falls through to fallback.
func (m *Manager) HTTPHandler(fallback http.Handler) http.Handler {
	if m.config.ForceHTTPSRedirect {
		fallback = m.redirectHandler()
	}
	if m.autocert != nil {
		return m.autocert.HTTPHandler(fallback)
	}
	return fallback
}

func (m *Manager) redirectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		target := "https://" + host
		if m.config.HTTPSPort != "" && m.config.HTTPSPort != "443" {
			target += ":" + m.config.HTTPSPort
		}
		http.Redirect(w, r, target+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}

// GenerateSelfSignedCert writes a PEM certificate and EC key valid for host.
func GenerateSelfSignedCert(certFile, keyFile, host string, validFor time.Duration) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("generate serial: %w", err)
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"FlivynTerm development"}, CommonName: host},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = []net.IP{ip}
	} else {
		tmpl.DNSNames = []string{host}
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}

	if err := writePEM(certFile, "CERTIFICATE", der, 0o644); err != nil {
		return err
	}
	return writePEM(keyFile, "EC PRIVATE KEY", keyDER, 0o600)
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
