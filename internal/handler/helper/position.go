package helper

import "github.com/yourusername/debate-tab/internal/domain/entity"

var positionLabels = map[entity.Position]string{
	entity.PositionOG: "Opening Government",
	entity.PositionOO: "Opening Opposition",
	entity.PositionCG: "Closing Government",
	entity.PositionCO: "Closing Opposition",
}

// PositionLabel возвращает полное название позиции для UI
func PositionLabel(p entity.Position) string {
	if label, ok := positionLabels[p]; ok {
		return label
	}
	return string(p)
}
