package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 0, FloorDiv(0, 1024))
	assert.Equal(t, 0, FloorDiv(1023, 1024))
	assert.Equal(t, 1, FloorDiv(1024, 1024))
	assert.Equal(t, -1, FloorDiv(-1, 1024), "отрицательные координаты должны уходить в предыдущий чанк")
	assert.Equal(t, -1, FloorDiv(-1024, 1024))
	assert.Equal(t, -2, FloorDiv(-1025, 1024))
}

func TestVec2_MapKey(t *testing.T) {
	m := map[Vec2]int{}
	m[Vec2{X: 3, Y: -2}] = 1
	m[Vec2{X: -2, Y: 3}] = 2

	assert.Equal(t, 1, m[Vec2{X: 3, Y: -2}])
	assert.Equal(t, 2, m[Vec2{X: -2, Y: 3}])
	assert.Equal(t, "(3,-2)", Vec2{X: 3, Y: -2}.String())
}

func TestVec2Float_Ops(t *testing.T) {
	v := Vec2Float{X: 10, Y: -4}

	assert.Equal(t, Vec2Float{X: 5, Y: -2}, v.Div(2))
	assert.Equal(t, Vec2Float{X: 20, Y: -8}, v.Mul(2))
	assert.Equal(t, Vec2{X: -1, Y: -1}, Vec2Float{X: -0.5, Y: -0.01}.Floor())
	assert.True(t, v.IsFinite())
	assert.False(t, Vec2Float{X: math.NaN()}.IsFinite())
	assert.False(t, Vec2Float{Y: math.Inf(1)}.IsFinite())
}
