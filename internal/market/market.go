// Package market holds the supported national markets, their currency
// defaults and the vendor-domain allowlists used during discovery.
package market

import (
	"github.com/rotisserie/eris"
	"golang.org/x/text/currency"
)

// currencyCodes maps a market to its ISO 4217 currency code.
var currencyCodes = map[string]string{
	"FR": "EUR", "NL": "EUR", "BE": "EUR", "DE": "EUR",
	"IT": "EUR", "ES": "EUR", "PT": "EUR",
	"UK": "GBP",
	"DK": "DKK", "SE": "SEK", "NO": "NOK",
	"PL": "PLN",
}

// markers maps a currency code to the symbol that appears next to shelf
// prices in rendered page text.
var markers = map[string]string{
	"EUR": "€",
	"GBP": "£",
	"DKK": "kr",
	"SEK": "kr",
	"NOK": "kr",
	"PLN": "zł",
}

// goldenDomains is the per-market allowlist of vendor domains consulted
// first during discovery.
var goldenDomains = map[string][]string{
	"FR": {"carrefour.fr", "auchan.fr", "coursesu.com", "intermarche.com", "monoprix.fr", "franprix.fr"},
	"UK": {"tesco.com", "sainsburys.co.uk", "asda.com", "morrisons.com", "iceland.co.uk", "waitrose.com"},
	"NL": {"ah.nl", "jumbo.com", "plus.nl", "dirk.nl", "vomar.nl"},
	"BE": {"delhaize.be", "colruyt.be", "carrefour.be", "ah.be"},
	"DE": {"rewe.de", "edeka.de", "kaufland.de", "dm.de", "rossmann.de"},
	"DK": {"nemlig.com", "bilkatogo.dk", "rema1000.dk", "netto.dk"},
	"IT": {"carrefour.it", "conad.it", "esselunga.it", "coop.it"},
	"ES": {"carrefour.es", "mercadona.es", "dia.es", "alcampo.es"},
	"SE": {"ica.se", "coop.se", "willys.se", "hemkop.se"},
	"NO": {"oda.com", "meny.no", "spar.no"},
	"PL": {"carrefour.pl", "auchan.pl", "biedronka.pl"},
	"PT": {"continente.pt", "auchan.pt", "pingo-doce.pt"},
}

// extendedDomainsDE is the second-phase widening list, used only for DE when
// the golden list yields too few candidates.
var extendedDomainsDE = []string{
	"aldi-nord.de",
	"aldi-sued.de",
	"lidl.de",
	"penny.de",
	"globus.de",
	"netto-online.de",
	"bringmeister.de",
	"flaschenpost.de",
}

// Supported reports whether the market code is in the supported set.
func Supported(code string) bool {
	_, ok := currencyCodes[code]
	return ok
}

// Currency returns the validated ISO currency code for a market.
func Currency(code string) (string, error) {
	c, ok := currencyCodes[code]
	if !ok {
		return "", eris.Errorf("market: unsupported market %q", code)
	}
	unit, err := currency.ParseISO(c)
	if err != nil {
		return "", eris.Wrapf(err, "market: currency for %s", code)
	}
	return unit.String(), nil
}

// Marker returns the currency symbol used by the heuristic extractor to
// recognize price-widget lines in a market.
func Marker(code string) string {
	c, ok := currencyCodes[code]
	if !ok {
		return ""
	}
	return markers[c]
}

// GoldenDomains returns the primary vendor-domain allowlist for a market.
// The returned slice is a copy; callers may reorder it.
func GoldenDomains(code string) []string {
	domains := goldenDomains[code]
	out := make([]string, len(domains))
	copy(out, domains)
	return out
}

// ExtendedDomains returns the widening list for a market, or nil when the
// market has none. Only DE widens automatically.
func ExtendedDomains(code string) []string {
	if code != "DE" {
		return nil
	}
	out := make([]string, len(extendedDomainsDE))
	copy(out, extendedDomainsDE)
	return out
}
