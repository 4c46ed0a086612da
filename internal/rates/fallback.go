package rates

import "github.com/shopspring/decimal"

// fallbackVsUSD holds approximate rates against USD, used whenever the
// upstream provider cannot be reached. Values are intentionally coarse; they
// keep pricing available rather than accurate.
var fallbackVsUSD = map[string]decimal.Decimal{
	"MKD": decimal.NewFromInt(57), // North Macedonian denar
	"EUR": decimal.NewFromFloat(0.92),
	"GBP": decimal.NewFromFloat(0.79),
	"CHF": decimal.NewFromFloat(0.88),
	"CAD": decimal.NewFromFloat(1.36),
	"AUD": decimal.NewFromFloat(1.53),
	"JPY": decimal.NewFromInt(149),
	"RSD": decimal.NewFromInt(108),    // Serbian dinar
	"BGN": decimal.NewFromFloat(1.80), // Bulgarian lev
	"ALL": decimal.NewFromInt(95),     // Albanian lek
}
