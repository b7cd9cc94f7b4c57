package middleware

import (
	"html"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// SanitizeConfig contains configuration for input sanitization
type SanitizeConfig struct {
	MaxStringLength int  // Maximum allowed length in runes
	AllowHTML       bool // Whether to allow HTML in strings
}

// DefaultSanitizeConfig returns default sanitization configuration
func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		MaxStringLength: 10000,
		AllowHTML:       false,
	}
}

// SanitizeString sanitizes a string input by:
// - Removing null bytes
// - Trimming whitespace
// - Escaping HTML entities (if AllowHTML is false)
// - Truncating to max length
func SanitizeString(input string, config SanitizeConfig) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)

	if !config.AllowHTML {
		input = html.EscapeString(input)
	}

	return truncateRunes(input, config.MaxStringLength)
}

// SanitizeDescription limpa a descrição do projeto: remove caracteres de
// controle (mantendo quebras de linha e tabs) e espaços nas pontas.
// O tamanho é validado pelo serviço, não truncado aqui.
func SanitizeDescription(input string) string {
	input = strings.ToValidUTF8(input, "")
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// SanitizeFilename sanitizes a filename by:
// - Removing path traversal attempts
// - Removing dangerous characters
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "")
	filename = strings.ReplaceAll(filename, "\\", "")
	filename = strings.ReplaceAll(filename, "\"", "")

	filename = removeControlChars(filename)
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." {
		return "analyza.xlsx"
	}
	return filename
}

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateID validates that an analysis ID is in a valid format
func ValidateID(id string) bool {
	return validID.MatchString(id)
}

// ValidateWebhookURL aceita apenas URLs http(s) absolutas. Sem allowPrivate,
// localhost e IPs literais de loopback, rede privada ou link-local são recusados;
// nomes que resolvem para esses endereços são barrados na conexão do webhook.
func ValidateWebhookURL(raw string, allowPrivate bool) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return false
	}
	if allowPrivate {
		return true
	}

	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && IsInternalIP(ip) {
		return false
	}
	return true
}

// IsInternalIP reports whether ip is loopback, private, link-local or unspecified
func IsInternalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// BodyLimit rejeita corpos maiores que maxBytes com 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
				Success: false,
				Error:   "corpo da requisição muito grande",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
