package terrain

import "math"

// Band полуинтервал значений шума [.., Below), отображаемый в категорию
type Band struct {
	Below    float64
	Category Category
}

// Classifier отображает значение шума в категорию.
// Полосы проверяются по возрастанию Below, первая подходящая выигрывает;
// всё, что не меньше последней границы, получает Top.
type Classifier struct {
	Bands []Band
	Top   Category
}

// DefaultClassifier эталонные пороги
var DefaultClassifier = Classifier{
	Bands: []Band{
		{Below: -0.2, Category: Water},
		{Below: -0.15, Category: Sand},
		{Below: 0.2, Category: Grass},
		{Below: 0.5, Category: Mountain},
	},
	Top: Snow,
}

// Classify классифицирует значение порогами по умолчанию
func Classify(v float64) Category {
	return DefaultClassifier.Classify(v)
}

// Classify возвращает категорию для значения v.
// Значения вне [-1, 1] прижимаются к границам; NaN считается минимумом.
func (c Classifier) Classify(v float64) Category {
	switch {
	case math.IsNaN(v) || v < -1:
		v = -1
	case v > 1:
		v = 1
	}

	for _, b := range c.Bands {
		if v < b.Below {
			return b.Category
		}
	}
	return c.Top
}
