package file

import "strings"

// IsPlausibleCID is the cheap identifier check used before an IPFS hash is
// written on chain: CIDv0 starts with "Qm", base32 CIDv1 with "bafy".
func IsPlausibleCID(cid string) bool {
	cid = strings.TrimSpace(cid)
	if cid == "" {
		return false
	}
	return strings.HasPrefix(cid, "Qm") || strings.HasPrefix(cid, "bafy")
}

// GatewayURL joins a gateway base and a content identifier.
func GatewayURL(gateway, cid string) string {
	if cid == "" {
		return ""
	}
	return strings.TrimRight(gateway, "/") + "/" + cid
}
