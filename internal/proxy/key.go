package proxy

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// ErrInvalidKey is returned for keys that are empty or escape the bucket namespace.
var ErrInvalidKey = errors.New("invalid object key")

var escapeRe = regexp.MustCompile(`%[0-9A-Fa-f]{2}`)

// NormalizeKey turns whatever the frontend sent (a bare key, a leading-slash path,
// a percent-encoded key or a full object URL) into an object store key.
// It decodes at most once, and only when the decoded form holds no further
// escape, so NormalizeKey(NormalizeKey(k)) == NormalizeKey(k) for every k.
// A key that fails to decode is used as is.
func NormalizeKey(raw string) string {
	k := trimKey(raw)
	for isObjectURL(k) {
		u, _ := url.Parse(k)
		k = trimKey(u.EscapedPath())
	}
	dec, err := url.PathUnescape(k)
	if err != nil || escapeRe.MatchString(dec) {
		return k
	}
	dec = trimKey(dec)
	if isObjectURL(dec) {
		return k
	}
	return dec
}

func trimKey(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r == '/' || unicode.IsSpace(r) })
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func isObjectURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// CleanKey normalizes raw and rejects keys with traversal segments or control bytes.
func CleanKey(raw string) (string, error) {
	k := NormalizeKey(raw)
	if k == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsAny(k, "\x00\r\n\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, k)
	}
	for _, seg := range strings.Split(k, "/") {
		if seg == ".." || seg == "." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
	}
	return k, nil
}

// Disposition values accepted by ContentDisposition.
const (
	Inline     = "inline"
	Attachment = "attachment"
)

// ContentDisposition builds a Content-Disposition header for key whose filename
// is the last path segment, RFC 5987 encoded. Unknown dispositions become inline.
func ContentDisposition(disposition, key string) string {
	d := Inline
	if strings.EqualFold(strings.TrimSpace(disposition), Attachment) {
		d = Attachment
	}
	name := path.Base(key)
	if name == "." || name == "/" {
		name = "file"
	}
	return d + "; filename*=UTF-8''" + encodeRFC5987(name)
}

// encodeRFC5987 percent-encodes every byte outside the RFC 5987 attr-char set.
func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
