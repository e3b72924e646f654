package valutatrade

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// go-money only knows ISO 4217 currencies, crypto ones are added with their
// usual 8 digit precision.
func init() {
	money.AddCurrency("BTC", "₿", "1 $", ".", ",", 8)
	money.AddCurrency("ETH", "Ξ", "1 $", ".", ",", 8)
	money.AddCurrency("SOL", "◎", "1 $", ".", ",", 8)
}

// D is a convenient factory for decimal.Decimal.
func D[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// currencyOf returns the go-money definition of code, never nil.
func currencyOf(code string) money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, canonical(code)).Currency()
}

// Fraction returns the number of minor digits used to display code.
func Fraction(code string) int32 { return int32(currencyOf(code).Fraction) }

// FormatAmount formats value using code's symbol and fraction digits.
func FormatAmount(value decimal.Decimal, code string) string {
	cur := currencyOf(code)
	minor := value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
