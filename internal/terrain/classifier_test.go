package terrain

import (
	"math"
	"testing"

	"github.com/annel0/terrain-viewer/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestClassify_ReferenceValues(t *testing.T) {
	assert.Equal(t, Water, Classify(-0.5))
	assert.Equal(t, Sand, Classify(-0.18))
	assert.Equal(t, Grass, Classify(0.0))
	assert.Equal(t, Mountain, Classify(0.3))
	assert.Equal(t, Snow, Classify(0.9))
}

func TestClassify_Boundaries(t *testing.T) {
	// Левая граница каждой полосы включена, правая исключена
	assert.Equal(t, Water, Classify(math.Nextafter(-0.2, -1)))
	assert.Equal(t, Sand, Classify(-0.2))
	assert.Equal(t, Grass, Classify(-0.15))
	assert.Equal(t, Mountain, Classify(0.2))
	assert.Equal(t, Snow, Classify(0.5))
	assert.Equal(t, Water, Classify(-1))
	assert.Equal(t, Snow, Classify(1))
}

func TestClassify_TotalAndMonotonic(t *testing.T) {
	// Обход [-1, 1]: каждая категория встречается одним непрерывным отрезком,
	// порядок полос: вода, песок, трава, горы, снег.
	order := []Category{Water, Sand, Grass, Mountain, Snow}
	idx := 0
	for i := 0; i <= 20000; i++ {
		v := -1 + float64(i)*0.0001
		c := Classify(v)
		assert.True(t, c.Valid())
		assert.NotEqual(t, Forest, c, "лес зарезервирован")
		for order[idx] != c {
			idx++
			if !assert.Less(t, idx, len(order), "категория %s вне порядка при v=%g", c, v) {
				return
			}
		}
	}
	assert.Equal(t, len(order)-1, idx)
}

func TestClassify_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, Water, Classify(-7))
	assert.Equal(t, Snow, Classify(3.5))
	assert.Equal(t, Water, Classify(math.Inf(-1)))
	assert.Equal(t, Snow, Classify(math.Inf(1)))
	assert.Equal(t, Water, Classify(math.NaN()))
}

func TestCategory_Validity(t *testing.T) {
	assert.Len(t, All(), 6)
	assert.Equal(t, "forest", Forest.String())
	assert.False(t, NumCategories.Valid())
	assert.Panics(t, func() { Category(17).MustValid() })
	assert.NotPanics(t, func() { Water.MustValid() })
}

func TestTileGrid(t *testing.T) {
	tiles := []Category{Water, Sand, Grass, Snow}
	g := NewTileGrid(vec.Vec2{X: 3, Y: -2}, 1, 2, tiles)

	assert.Equal(t, 2, g.Size())
	assert.Equal(t, Sand, g.At(1, 0))
	assert.Equal(t, Grass, g.At(0, 1))
	assert.Equal(t, 1, g.Counts()[Snow])
	assert.Panics(t, func() { g.At(2, 0) })
	assert.Panics(t, func() { NewTileGrid(vec.Vec2{}, 1, 3, tiles) })
}
