package quotes

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zone pairs a delivery zone with its commercial discount percentage.
type Zone struct {
	Name    string
	Percent decimal.Decimal
}

// zoneTable is the discount schedule agreed with sales. Unknown zones carry
// no discount.
var zoneTable = []Zone{
	{Name: "Zona Norte", Percent: decimal.NewFromInt(10)},
	{Name: "Zona Centro", Percent: decimal.NewFromInt(5)},
	{Name: "Bajío", Percent: decimal.NewFromInt(10)},
	{Name: "Zona Sur", Percent: decimal.NewFromInt(15)},
	{Name: "Frontera", Percent: decimal.NewFromInt(8)},
}

// ZonePercent returns the discount percentage for the given zone name.
func ZonePercent(zone string) decimal.Decimal {
	name := strings.TrimSpace(zone)
	for _, z := range zoneTable {
		if z.Name == name {
			return z.Percent
		}
	}
	return decimal.Zero
}

// Zones returns the configured zone schedule in display order.
func Zones() []Zone {
	out := make([]Zone, len(zoneTable))
	copy(out, zoneTable)
	return out
}
