// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Quote renders s as a JSON string literal for use inside messages.
//
// Strings that are not valid UTF-8 cannot be JSON encoded; they are quoted
// with their non-printable bytes written as \xNN escapes instead.
func Quote(s string) string {
	if !utf8.ValidString(s) {
		return `"` + EscapeBinary(s) + `"`
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return `"` + EscapeBinary(s) + `"`
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// EscapeBinary escapes double quotes and every byte outside printable ASCII.
func EscapeBinary(s string) string {
	var sb strings.Builder

	for i := range len(s) {
		c := s[i]

		switch {
		case c == '"':
			sb.WriteString(`\"`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, `\x%02x`, c)
		}
	}

	return sb.String()
}

// KeyValueTip describes where a translation string was looked up.
//
// The value is omitted when it is empty or identical to the key.
func KeyValueTip(locale, key, value string) string {
	if value == "" || value == key {
		return fmt.Sprintf("Locale: %s, Key: %s", Quote(locale), Quote(key))
	}

	return fmt.Sprintf("Locale: %s, Key: %s, Value: %s", Quote(locale), Quote(key), Quote(value))
}
