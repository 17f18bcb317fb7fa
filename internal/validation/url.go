package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URLValidator checks URLs the client dials or hands to a media player.
type URLValidator struct {
	// AllowLocalhost permits loopback hosts such as a local catalog service.
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC 1918 and link-local addresses.
	AllowPrivateIPs bool
	// DefaultScheme is prepended when the input has no scheme.
	DefaultScheme string
	MaxLength     int
}

// NewURLValidator returns a validator that only accepts public hosts.
// Media URLs coming from the service go through it before a player is
// launched.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		DefaultScheme: "https",
		MaxLength:     2048,
	}
}

// NewServiceURLValidator returns a validator for the catalog service base
// URL. The service usually runs next to the client, so loopback is
// accepted and a bare host:port defaults to plain http.
func NewServiceURLValidator(allowPrivate bool) *URLValidator {
	return &URLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: allowPrivate,
		DefaultScheme:   "http",
		MaxLength:       2048,
	}
}

// ValidateAndNormalize validates input and returns its normalized form.
func (v *URLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` \t\n") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		scheme := v.DefaultScheme
		if scheme == "" {
			scheme = "https"
		}
		input = scheme + "://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("URL must not carry credentials")
	}

	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	return parsed.String(), nil
}

func (v *URLValidator) validateHost(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}
	if isLocalhost(hostname) {
		if !v.AllowLocalhost {
			return fmt.Errorf("localhost URLs are not permitted")
		}
		return nil
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		return nil
	}
	if ip.IsUnspecified() || ip.Equal(net.IPv4bcast) {
		return fmt.Errorf("address %s is not routable", hostname)
	}
	if !v.AllowPrivateIPs && isPrivateIP(ip) {
		return fmt.Errorf("private IP addresses are not permitted")
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
