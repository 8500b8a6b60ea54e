package models

import "html"

// Free-text fields (negotiation notes, hold reasons) are stored HTML-entity
// encoded. Encoding happens explicitly at the write boundary and decoding at
// the read boundary, never through implicit accessors.

// EncodeText escapes a free-text value for storage
func EncodeText(s string) *string {
	if s == "" {
		return nil
	}
	encoded := html.EscapeString(s)
	return &encoded
}

// DecodeText unescapes a stored free-text value for display
func DecodeText(s *string) string {
	if s == nil {
		return ""
	}
	return html.UnescapeString(*s)
}
