package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlausibleCID(t *testing.T) {
	assert.True(t, IsPlausibleCID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"))
	assert.True(t, IsPlausibleCID("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"))
	assert.False(t, IsPlausibleCID(""))
	assert.False(t, IsPlausibleCID("   "))
	assert.False(t, IsPlausibleCID("ipfs://QmYwAP"))
	assert.False(t, IsPlausibleCID("zb2rhe5P4gXftAwvA4eXQ5HJwsER2owDyS9sKaQRRVQPn93bA"))
}

func TestIsVideoMIME(t *testing.T) {
	assert.True(t, IsVideoMIME("video/mp4", "clip.bin"))
	assert.True(t, IsVideoMIME("video/quicktime; codecs=avc1", "clip"))
	assert.False(t, IsVideoMIME("image/png", "clip.mp4"))
	assert.True(t, IsVideoMIME("", "clip.MP4"))
	assert.True(t, IsVideoMIME("application/octet-stream", "clip.webm"))
	assert.False(t, IsVideoMIME("", "notes.txt"))
}

func TestMakeKeyAndShortAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef_QmX", MakeKey(" 0xABCdef ", "QmX"))
	assert.Equal(t, "-1:abcd_QmX", MakeKey("-1:ABCD", "QmX"))
	assert.Equal(t, "kQCsj...rcJvr", ShortAddress("kQCsjLr8O8u9Ngj2Y3i9KO10uziuI9r3ngQsBBBWtsyrcJvr"))
	assert.Equal(t, "short", ShortAddress("short"))
	assert.Equal(t, "https://gw/ipfs/Qm1", GatewayURL("https://gw/ipfs/", "Qm1"))
	assert.Equal(t, "", GatewayURL("https://gw/ipfs/", ""))
}

func TestCanonicalAddressFoldsOnlyHexForms(t *testing.T) {
	assert.Equal(t, "0xabcdef", CanonicalAddress("0xAbCdEf"))
	assert.Equal(t, "0:abcdef", CanonicalAddress(" 0:ABCDEF "))
	assert.Equal(t, "-1:abcdef", CanonicalAddress("-1:AbCdEf"))

	// Base64 TON addresses differing only in case are different wallets.
	upper := "EQCsjLr8O8u9Ngj2Y3i9KO10uziuI9r3ngQsBBBWtsyrcJvr"
	lower := "EQCsjLr8O8u9Ngj2Y3i9KO10uziuI9r3ngQsBBBWtsyrcjvr"
	assert.Equal(t, upper, CanonicalAddress(upper))
	assert.NotEqual(t, MakeKey(upper, "QmX"), MakeKey(lower, "QmX"))

	assert.Equal(t, "0xnothex", CanonicalAddress("0xnothex"))
	assert.Equal(t, "a:ff", CanonicalAddress("a:ff"))
}
