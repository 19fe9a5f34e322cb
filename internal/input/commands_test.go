package input

import (
	"math/rand"
	"testing"

	"github.com/annel0/terrain-viewer/internal/camera"
	"github.com/annel0/terrain-viewer/internal/config"
	"github.com/stretchr/testify/assert"
)

type fakeTarget struct {
	cam   *camera.Camera
	seeds []int64
}

func (f *fakeTarget) Camera() *camera.Camera { return f.cam }
func (f *fakeTarget) Reseed(seed int64)      { f.seeds = append(f.seeds, seed) }

func newTestController() (*Controller, *fakeTarget) {
	cfg := config.Default().Camera
	cfg.PanSpeed = 10
	cfg.ZoomFactor = 2
	target := &fakeTarget{cam: camera.New(cfg)}
	return NewController(target, cfg, rand.New(rand.NewSource(1))), target
}

func TestController_Pan(t *testing.T) {
	c, target := newTestController()

	c.ApplyAll([]Command{Pan(Right), Pan(Right), Pan(Down)})
	assert.Equal(t, 20.0, target.cam.Position().X)
	assert.Equal(t, 10.0, target.cam.Position().Y)

	c.ApplyAll([]Command{Pan(Left), Pan(Up), Pan(Up)})
	assert.Equal(t, 10.0, target.cam.Position().X)
	assert.Equal(t, -10.0, target.cam.Position().Y)
}

func TestController_PanRespectsZoom(t *testing.T) {
	c, target := newTestController()

	c.Apply(ZoomIn())
	assert.Equal(t, 2.0, target.cam.Zoom())
	c.Apply(Pan(Right))
	assert.Equal(t, 5.0, target.cam.Position().X, "на зуме 2 сдвиг в мире вдвое меньше")

	c.Apply(ZoomOut())
	c.Apply(ZoomOut())
	assert.Equal(t, 0.5, target.cam.Zoom())
}

func TestController_Reseed(t *testing.T) {
	c, target := newTestController()

	seed := c.Apply(Reseed())
	assert.Equal(t, []int64{seed}, target.seeds)
	assert.GreaterOrEqual(t, seed, int64(10000))
	assert.LessOrEqual(t, seed, int64(100000))

	assert.Equal(t, int64(0), c.Apply(Pan(Up)))
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "pan(left)", Pan(Left).String())
	assert.Equal(t, "zoomIn", ZoomIn().String())
	assert.Equal(t, "reseed", Reseed().String())
	assert.Panics(t, func() {
		c, _ := newTestController()
		c.Apply(Command{Kind: 9})
	})
}
