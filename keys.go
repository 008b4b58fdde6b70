package filedrop

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ManagedPrefix is the key namespace this service owns. Objects outside
// it are never created and never deleted.
const ManagedPrefix = "uploads/"

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const tokenLength = 6

// MintKey produces a new object key under the managed namespace:
// uploads/<unix-ms>-<token>-<filename>. The wall-clock timestamp plus
// the random token make collisions across concurrent callers
// negligible, and the filename stays visible as a suffix, sanitized so
// every minted key satisfies IsManagedKey.
func MintKey(originalFilename string) (string, error) {
	token, err := randomToken(tokenLength)
	if err != nil {
		return "", fmt.Errorf("mint key: %w", err)
	}
	name := sanitizeFilename(originalFilename)
	return fmt.Sprintf("%s%d-%s-%s", ManagedPrefix, time.Now().UnixMilli(), token, name), nil
}

// sanitizeFilename reduces a client-supplied filename to characters that
// survive NormalizeKey and the managed-namespace checks unchanged.
// Anything outside [A-Za-z0-9._-] becomes an underscore, dot runs
// collapse to a single dot, and an empty result falls back to "file".
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	out = strings.Trim(out, ".")
	if out == "" {
		out = "file"
	}
	return out
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf), nil
}

// NormalizeKey decodes percent-encoding exactly once and rejects keys
// that remain suspicious afterwards. A second layer of encoding hiding
// a path separator, dot segment, or percent sign is treated as hostile
// rather than decoded further.
func NormalizeKey(key string) (string, error) {
	decoded, err := url.PathUnescape(key)
	if err != nil {
		return "", fmt.Errorf("normalize key %q: %s: %w", key, err, ErrRejected)
	}

	lower := strings.ToLower(decoded)
	for _, seq := range []string{"%2e", "%2f", "%5c", "%25"} {
		if strings.Contains(lower, seq) {
			return "", fmt.Errorf("normalize key %q: residual encoding after decode: %w", key, ErrRejected)
		}
	}

	return decoded, nil
}

// IsManagedKey reports whether key, after normalization, lives strictly
// inside the managed namespace. This is the sole gate consulted before
// any destructive operation.
func IsManagedKey(key string) bool {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return false
	}
	return isManagedNormalized(normalized)
}

// isManagedNormalized checks an already-normalized key. Decoding is
// applied exactly once; callers holding a NormalizeKey result use this
// to avoid a second decode.
func isManagedNormalized(key string) bool {
	if !strings.HasPrefix(key, ManagedPrefix) {
		return false
	}

	rest := strings.TrimPrefix(key, ManagedPrefix)
	if rest == "" {
		return false
	}

	if strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return false
	}

	return true
}
