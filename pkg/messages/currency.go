package messages

// Currency is an ISO-4217 currency supported by the gateway
type Currency struct {
	Alpha     string // Alphabetic code sent on the wire (e.g. "ISK")
	NumericID int    // ISO-4217 numeric code
	Label     string
}

var (
	CAD = Currency{Alpha: "CAD", NumericID: 124, Label: "Canadian dollar"}
	CHF = Currency{Alpha: "CHF", NumericID: 756, Label: "Swiss franc"}
	CNY = Currency{Alpha: "CNY", NumericID: 156, Label: "Chinese Yuan"}
	CZK = Currency{Alpha: "CZK", NumericID: 203, Label: "Czech Koruna"}
	DKK = Currency{Alpha: "DKK", NumericID: 208, Label: "Danish krone"}
	EUR = Currency{Alpha: "EUR", NumericID: 978, Label: "Euro"}
	GBP = Currency{Alpha: "GBP", NumericID: 826, Label: "Pound sterling"}
	ISK = Currency{Alpha: "ISK", NumericID: 352, Label: "Iceland krona"}
	NOK = Currency{Alpha: "NOK", NumericID: 578, Label: "Norwegian krone"}
	RUB = Currency{Alpha: "RUB", NumericID: 643, Label: "Russian rouble"}
	SEK = Currency{Alpha: "SEK", NumericID: 752, Label: "Swedish krona/kronor"}
	SGD = Currency{Alpha: "SGD", NumericID: 702, Label: "Singapore dollar"}
	USD = Currency{Alpha: "USD", NumericID: 840, Label: "US dollar"}
)

var currencies = []Currency{CAD, CHF, CNY, CZK, DKK, EUR, GBP, ISK, NOK, RUB, SEK, SGD, USD}

// Currencies returns every supported currency in declaration order
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// ParseCurrency looks up a currency by its alphabetic code
// The lookup is exact: "isk" is not found.
func ParseCurrency(alpha string) (Currency, bool) {
	for _, c := range currencies {
		if c.Alpha == alpha {
			return c, true
		}
	}
	return Currency{}, false
}

// CurrencyByNumericID looks up a currency by its ISO-4217 numeric code
func CurrencyByNumericID(id int) (Currency, bool) {
	for _, c := range currencies {
		if c.NumericID == id {
			return c, true
		}
	}
	return Currency{}, false
}

func (c Currency) String() string {
	return c.Alpha
}
