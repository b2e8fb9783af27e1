package analytics

import (
	"sort"

	"github.com/verifintek/verifintek/internal/movements"
)

// ratioPlaces is the precision of the asset/liability ratio. The ratio
// is informational, not money, so it does not go through Quantize.
const ratioPlaces = 4

// ComputeBreakdown groups movement totals per sub-unit and derives each
// unit's net contribution and asset/liability ratio. Movements captured
// at company level (no sub-unit) are excluded. The ratio is nil when
// the unit carries no liabilities.
func ComputeBreakdown(rows []MovementRow, names map[int64]string) []SubUnitLine {
	byUnit := make(map[int64]*SubUnitLine)
	for _, row := range rows {
		if row.SubUnitID == nil {
			continue
		}
		id := *row.SubUnitID
		line, ok := byUnit[id]
		if !ok {
			line = &SubUnitLine{SubUnitID: id, Name: names[id]}
			byUnit[id] = line
		}
		switch row.Type {
		case movements.TypeAsset:
			line.AssetTotal = line.AssetTotal.Add(row.TotalAmount)
		case movements.TypeLiability:
			line.LiabilityTotal = line.LiabilityTotal.Add(row.TotalAmount)
		}
	}

	lines := make([]SubUnitLine, 0, len(byUnit))
	for _, line := range byUnit {
		line.Net = line.AssetTotal.Sub(line.LiabilityTotal)
		if !line.LiabilityTotal.IsZero() {
			ratio := line.AssetTotal.DivRound(line.LiabilityTotal, ratioPlaces)
			line.Ratio = &ratio
		}
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].SubUnitID < lines[j].SubUnitID })
	return lines
}
