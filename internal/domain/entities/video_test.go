package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3", "0x5fbdb2315678afecb367f032d93f642f64180aa3"))
	assert.True(t, SameAddress("0:ABCDEF", "0:abcdef"))
	assert.False(t, SameAddress("", ""))
	assert.False(t, SameAddress(
		"EQCsjLr8O8u9Ngj2Y3i9KO10uziuI9r3ngQsBBBWtsyrcJvr",
		"EQCsjLr8O8u9Ngj2Y3i9KO10uziuI9r3ngQsBBBWtsyrcjvr",
	))
}

func TestDecideOwnerAlwaysViews(t *testing.T) {
	v := VideoRecord{Uploader: "0x5FbDB2315678afecb367f032d93F642f64180aa3"}
	assert.True(t, Decide(v, "0x5fbdb2315678afecb367f032d93f642f64180aa3", false))
	assert.False(t, Decide(v, "0x2222222222222222222222222222222222222222", false))
	assert.True(t, Decide(v, "0x2222222222222222222222222222222222222222", true))
	assert.False(t, Decide(VideoRecord{}, "", false), "an empty uploader matches nobody")
}
