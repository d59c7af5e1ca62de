// Package address holds the pure normalization functions applied to
// delivery addresses before they reach the store.
package address

import "strings"

const maxSlugLen = 50

// HouseNumber returns the longest leading run of decimal digits in addr,
// or the empty string when addr does not start with a digit.
func HouseNumber(addr string) string {
	i := 0
	for i < len(addr) && addr[i] >= '0' && addr[i] <= '9' {
		i++
	}
	return addr[:i]
}

// Slug derives a stable identifier from an address: lowercase, every maximal
// run of non-alphanumeric characters collapsed to a single hyphen, leading
// and trailing hyphens stripped, capped at 50 characters.
//
// Two distinct addresses can normalize to the same slug; callers accept
// last-write-wins overwrite semantics in that case.
func Slug(addr string) string {
	lower := strings.ToLower(addr)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	s := b.String()
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	return s
}
