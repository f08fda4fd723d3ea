package logging

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"tokenledger/core/types"
)

// RedactedValue replaces values that cannot be rendered safely.
const RedactedValue = "[REDACTED]"

const (
	accountHeadChars = 10
	accountTailChars = 4
)

// AccountField renders an account in shortened bech32 form, enough to tell
// accounts apart in logs without printing the full identity. The zero
// account renders as an empty string.
func AccountField(key string, acc types.Account) slog.Attr {
	if acc.IsZero() {
		return slog.String(key, "")
	}
	encoded := acc.String()
	if len(encoded) <= accountHeadChars+accountTailChars {
		return slog.String(key, encoded)
	}
	return slog.String(key, encoded[:accountHeadChars]+"..."+encoded[len(encoded)-accountTailChars:])
}

// LogoField summarises an operator-supplied token logo. Data URIs are
// reduced to their media type and size; URLs lose their credentials, query
// and fragment. Anything else is redacted.
func LogoField(key, logo string) slog.Attr {
	logo = strings.TrimSpace(logo)
	if logo == "" {
		return slog.String(key, "")
	}
	if rest, ok := strings.CutPrefix(logo, "data:"); ok {
		mediaType, _, _ := strings.Cut(rest, ",")
		mediaType, _, _ = strings.Cut(mediaType, ";")
		if mediaType == "" {
			mediaType = "text/plain"
		}
		return slog.String(key, fmt.Sprintf("data:%s (%d bytes)", mediaType, len(logo)))
	}
	u, err := url.Parse(logo)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return slog.String(key, RedactedValue)
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return slog.String(key, u.String())
}
