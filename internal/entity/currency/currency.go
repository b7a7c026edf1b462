package currency

const (
	INR = "INR"
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
)

var Currencies = []string{INR, USD, EUR, GBP}

var symbols = map[string]string{
	INR: "₹",
	USD: "$",
	EUR: "€",
	GBP: "£",
}

func Supported(name string) bool {
	_, ok := symbols[name]
	return ok
}

// Symbol returns the display symbol for a currency. Unknown currencies
// fall back to their code so formatting never produces an empty prefix.
func Symbol(name string) string {
	if s, ok := symbols[name]; ok {
		return s
	}
	return name + " "
}
