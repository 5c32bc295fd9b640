// Package moneywords renders money amounts as Spanish legal text for
// printed quotations ("Doscientos sesenta y un pesos 00/100 M.N.").
package moneywords

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxSupported is the largest integer part the cardinal writer handles.
// Above it the formatter falls back to digits instead of failing.
var maxSupported = decimal.NewFromInt(999_999_999_999)

var units = []string{
	"", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve",
}

var teens = []string{
	"diez", "once", "doce", "trece", "catorce", "quince",
	"dieciséis", "diecisiete", "dieciocho", "diecinueve",
}

var twenties = []string{
	"veinte", "veintiuno", "veintidós", "veintitrés", "veinticuatro",
	"veinticinco", "veintiséis", "veintisiete", "veintiocho", "veintinueve",
}

var tens = []string{
	"", "", "", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa",
}

var hundreds = []string{
	"", "ciento", "doscientos", "trescientos", "cuatrocientos", "quinientos",
	"seiscientos", "setecientos", "ochocientos", "novecientos",
}

// PesosMN renders the amount as "<Palabras> pesos NN/100 M.N.". Negative or
// out-of-range amounts render the integer part as digits; the function never
// returns an error so document exports cannot fail on it.
func PesosMN(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	entero := rounded.Truncate(0)
	cents := rounded.Sub(entero).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents < 0 {
		cents = -cents
	}

	if entero.IsNegative() || entero.GreaterThan(maxSupported) {
		return fmt.Sprintf("%s pesos %02d/100 M.N.", entero.String(), cents)
	}

	palabras := Cardinal(entero.IntPart())
	palabras = elideUno(palabras)
	palabras = capitalize(palabras)
	return fmt.Sprintf("%s pesos %02d/100 M.N.", palabras, cents)
}

// Cardinal writes n in Spanish words. n must be within [0, 999999999999].
func Cardinal(n int64) string {
	if n == 0 {
		return "cero"
	}

	var parts []string

	if millions := n / 1_000_000; millions > 0 {
		switch {
		case millions == 1:
			parts = append(parts, "un millón")
		default:
			parts = append(parts, apocopate(Cardinal(millions))+" millones")
		}
		n %= 1_000_000
	}

	if thousands := n / 1000; thousands > 0 {
		if thousands == 1 {
			parts = append(parts, "mil")
		} else {
			parts = append(parts, apocopate(belowThousand(thousands))+" mil")
		}
		n %= 1000
	}

	if n > 0 {
		parts = append(parts, belowThousand(n))
	}

	return strings.Join(parts, " ")
}

func belowThousand(n int64) string {
	if n == 100 {
		return "cien"
	}

	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundreds[h])
		n %= 100
	}

	switch {
	case n == 0:
	case n < 10:
		parts = append(parts, units[n])
	case n < 20:
		parts = append(parts, teens[n-10])
	case n < 30:
		parts = append(parts, twenties[n-20])
	default:
		t := tens[n/10]
		if u := n % 10; u > 0 {
			parts = append(parts, t+" y "+units[u])
		} else {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, " ")
}

// apocopate adjusts a group used as a multiplier: "veintiuno mil" is wrong,
// "veintiún mil" is right.
func apocopate(s string) string {
	switch {
	case s == "uno":
		return "un"
	case strings.HasSuffix(s, " uno"):
		return strings.TrimSuffix(s, " uno") + " un"
	case s == "veintiuno":
		return "veintiún"
	case strings.HasSuffix(s, " veintiuno"):
		return strings.TrimSuffix(s, " veintiuno") + " veintiún"
	default:
		return s
	}
}

// elideUno drops the final -o before "pesos", matching how the issued
// documents have always read ("ciento un pesos").
func elideUno(s string) string {
	if strings.HasSuffix(s, " uno") {
		return strings.TrimSuffix(s, " uno") + " un"
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if runes[0] >= 'a' && runes[0] <= 'z' {
		runes[0] = runes[0] - 'a' + 'A'
	}
	return string(runes)
}
