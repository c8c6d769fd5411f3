package service

import (
	"fmt"
	"strings"
)

const (
	logoServiceURL = "https://www.google.com/s2/favicons?domain=%s&sz=%d"
	logoSize       = 128
)

// BrandDomain maps an upstream product name to the brand's web domain.
type BrandDomain struct {
	Name   string
	Domain string
}

// brandDomains is ordered: fuzzy matching takes the first key contained in
// the product name.
var brandDomains = []BrandDomain{
	{"AJIO India", "ajio.com"},
	{"App Store & iTunes India", "apple.com"},
	{"Bigbasket India", "bigbasket.com"},
	{"Blink it India", "blinkit.com"},
	{"BlueStone Gold Jewellery India", "bluestone.com"},
	{"BookMyShow India", "bookmyshow.com"},
	{"Cleartrip India", "cleartrip.com"},
	{"Dominos India", "dominos.co.in"},
	{"Ease My Trip India", "easemytrip.com"},
	{"Flipkart India", "flipkart.com"},
	{"Google Play India", "play.google.com"},
	{"Hindustan Petroleum India", "hindustanpetroleum.com"},
	{"MakeMyTrip India", "makemytrip.com"},
	{"Phonepe India", "phonepe.com"},
	{"PlayStation Store India", "playstation.com"},
	{"Reliance JioMart India", "jiomart.com"},
	{"Shoppers Stop India", "shoppersstop.com"},
	{"Steam India", "store.steampowered.com"},
	{"Swiggy Money India", "swiggy.com"},
	{"Tanishq Gold Coin India", "tanishq.co.in"},
	{"Tanishq Gold Jewellery India", "tanishq.co.in"},
	{"Uber Vouchers India", "uber.com"},
	{"UniPin Voucher India", "unipin.com"},
	{"Valorant India", "playvalorant.com"},
	{"Zomato India", "zomato.com"},
}

// LogoResolver maps product names to high-resolution logo URLs.
type LogoResolver struct {
	table []BrandDomain
	exact map[string]string
}

// NewLogoResolver builds a resolver over an ordered table. A nil table uses
// the built-in brand list.
func NewLogoResolver(table []BrandDomain) *LogoResolver {
	if table == nil {
		table = brandDomains
	}
	exact := make(map[string]string, len(table))
	for _, b := range table {
		if _, dup := exact[b.Name]; !dup {
			exact[b.Name] = b.Domain
		}
	}
	return &LogoResolver{table: table, exact: exact}
}

// Resolve returns the logo URL for name, or "" when no brand matches.
func (r *LogoResolver) Resolve(name string) string {
	if domain, ok := r.exact[name]; ok {
		return LogoURL(domain)
	}

	lower := strings.ToLower(name)
	for _, b := range r.table {
		if strings.Contains(lower, strings.ToLower(b.Name)) {
			return LogoURL(b.Domain)
		}
	}
	return ""
}

// LogoURL builds the logo-service URL for a domain.
func LogoURL(domain string) string {
	return fmt.Sprintf(logoServiceURL, domain, logoSize)
}
