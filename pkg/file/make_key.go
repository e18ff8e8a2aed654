package file

import "strings"

// MakeKey builds the cache key for one viewer's access to one piece of content.
// The viewer should already be normalized by its chain client.
func MakeKey(viewer, contentID string) string {
	return CanonicalAddress(viewer) + "_" + contentID
}

// CanonicalAddress lower-cases the hex forms, EVM 0x... and TON raw
// workchain:hex, where case carries no meaning. Any other form, such as a
// base64 TON address, is case-sensitive and only trimmed.
func CanonicalAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if isHexAddress(addr) {
		return strings.ToLower(addr)
	}
	return addr
}

func isHexAddress(addr string) bool {
	var digits string
	if rest, ok := strings.CutPrefix(addr, "0x"); ok {
		digits = rest
	} else if wc, rest, ok := strings.Cut(addr, ":"); ok {
		wc = strings.TrimPrefix(wc, "-")
		if wc == "" || strings.Trim(wc, "0123456789") != "" {
			return false
		}
		digits = rest
	} else {
		return false
	}
	return digits != "" && strings.Trim(digits, "0123456789abcdefABCDEF") == ""
}

// ShortAddress renders an address as its first and last five characters.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:5] + "..." + address[len(address)-5:]
}
