package market

import "strings"

// ReferenceCurrency is the currency risk tiers are expressed in.
const ReferenceCurrency = "AED"

// Rates is a fixed lookup of USD value per unit of currency.
type Rates map[string]float64

// DefaultRates are the static conversion rates used across the Gulf markets.
var DefaultRates = Rates{
	"USD": 1.0,
	"AED": 0.27,
	"SAR": 0.27,
	"QAR": 0.27,
	"KWD": 3.25,
	"BHD": 2.65,
	"OMR": 2.60,
}

// rate returns the USD rate for a currency. Unknown currencies are treated as
// already denominated in the reference currency.
func (r Rates) rate(currency string) float64 {
	if v, ok := r[strings.ToUpper(strings.TrimSpace(currency))]; ok && v > 0 {
		return v
	}
	if v, ok := r[ReferenceCurrency]; ok && v > 0 {
		return v
	}
	return 1
}

// Convert converts amount between two currencies via USD.
func (r Rates) Convert(amount float64, from, to string) float64 {
	fromRate, toRate := r.rate(from), r.rate(to)
	if fromRate == toRate {
		return amount
	}
	return amount * fromRate / toRate
}

// ToReference converts amount into ReferenceCurrency.
func (r Rates) ToReference(amount float64, currency string) float64 {
	return r.Convert(amount, currency, ReferenceCurrency)
}

// ToUSD converts amount into US dollars.
func (r Rates) ToUSD(amount float64, currency string) float64 {
	return r.Convert(amount, currency, "USD")
}
