package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogoResolver_Resolve(t *testing.T) {
	r := NewLogoResolver(nil)

	assert.Equal(t, "https://www.google.com/s2/favicons?domain=zomato.com&sz=128", r.Resolve("Zomato India"))
	assert.Equal(t, "https://www.google.com/s2/favicons?domain=zomato.com&sz=128", r.Resolve("Zomato India Extra Pack"))
	assert.Equal(t, "https://www.google.com/s2/favicons?domain=flipkart.com&sz=128", r.Resolve("flipkart india"))
	assert.Empty(t, r.Resolve("Unknown Brand"))
	assert.Empty(t, r.Resolve(""))
}

func TestLogoResolver_FirstMatchWins(t *testing.T) {
	r := NewLogoResolver([]BrandDomain{
		{"Gold", "first.example"},
		{"Gold Coin", "second.example"},
	})

	assert.Equal(t, LogoURL("second.example"), r.Resolve("Gold Coin"))
	assert.Equal(t, LogoURL("first.example"), r.Resolve("Tanishq Gold Coin Festive"))
}
