package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/terrain-viewer/internal/terrain"
	"github.com/annel0/terrain-viewer/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripImage строит полосу, где каждый спрайт залит цветом R = индекс категории
func stripImage(tileSize int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(terrain.NumCategories)*tileSize, tileSize))
	for x := 0; x < img.Bounds().Dx(); x++ {
		for y := 0; y < tileSize; y++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x / tileSize), A: 0xff})
		}
	}
	return img
}

func uniformGrid(coords vec.Vec2, epoch uint64, size int, c terrain.Category) *terrain.TileGrid {
	tiles := make([]terrain.Category, size*size)
	for i := range tiles {
		tiles[i] = c
	}
	return terrain.NewTileGrid(coords, epoch, size, tiles)
}

func TestStripAtlas_Sprites(t *testing.T) {
	a, err := NewStripAtlas(stripImage(4), 4)
	require.NoError(t, err)

	for _, c := range terrain.All() {
		s := a.Sprite(c)
		assert.Equal(t, 4, s.Bounds().Dx())
		r, _, _, _ := s.At(s.Bounds().Min.X, s.Bounds().Min.Y).RGBA()
		assert.Equal(t, uint32(c), r>>8, "спрайт %s взят не из своей ячейки", c)
	}
	assert.Panics(t, func() { a.Sprite(terrain.NumCategories) })
}

func TestStripAtlas_TooSmall(t *testing.T) {
	_, err := NewStripAtlas(image.NewRGBA(image.Rect(0, 0, 10, 4)), 4)
	assert.Error(t, err)
	_, err = NewStripAtlas(stripImage(4), 0)
	assert.Error(t, err)
}

func TestLoadStripAtlas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilesheet.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, stripImage(8)))
	require.NoError(t, f.Close())

	a, err := LoadStripAtlas(path, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, a.TileSize())

	_, err = LoadStripAtlas(filepath.Join(t.TempDir(), "missing.png"), 8)
	assert.Error(t, err)
}

func TestOpenAtlas(t *testing.T) {
	a, err := OpenAtlas("", 12)
	require.NoError(t, err)
	assert.Equal(t, 12, a.TileSize())

	_, err = OpenAtlas(filepath.Join(t.TempDir(), "missing.png"), 12)
	assert.Error(t, err)
}

func TestDefaultAtlas(t *testing.T) {
	a := DefaultAtlas(16)
	water := a.Sprite(terrain.Water).At(a.Sprite(terrain.Water).Bounds().Min.X, 0)
	snow := a.Sprite(terrain.Snow).At(a.Sprite(terrain.Snow).Bounds().Min.X, 0)
	assert.NotEqual(t, water, snow)

	wc := CategoryColor(terrain.Water)
	assert.Greater(t, wc.B, wc.R, "вода должна быть синей")
}

func TestCache_BuildsOncePerChunk(t *testing.T) {
	a, err := NewStripAtlas(stripImage(2), 2)
	require.NoError(t, err)
	cache := NewCache(a, 4)

	coords := vec.Vec2{X: 1, Y: 2}
	grid := uniformGrid(coords, 1, 4, terrain.Sand)

	img1, err := cache.Image(coords, grid)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img1.Bounds())
	assert.Equal(t, uint8(terrain.Sand), img1.RGBAAt(7, 7).R)

	// Попадание не сверяет содержимое сетки
	other := uniformGrid(coords, 1, 4, terrain.Water)
	img2, err := cache.Image(coords, other)
	require.NoError(t, err)
	assert.Same(t, img1, img2)
	assert.Equal(t, 1, cache.Builds())
	assert.True(t, cache.Contains(coords, 1))
	assert.False(t, cache.Contains(coords, 2))
}

func TestCache_EpochHandling(t *testing.T) {
	cache := NewCache(DefaultAtlas(2), 4)
	coords := vec.Vec2{X: -3, Y: 0}

	old, err := cache.Image(coords, uniformGrid(coords, 1, 4, terrain.Grass))
	require.NoError(t, err)

	// Запись прошлой эпохи считается промахом
	fresh, err := cache.Image(coords, uniformGrid(coords, 2, 4, terrain.Snow))
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, 2, cache.Builds())

	// Сетка старой эпохи после новой записи даёт ошибку
	_, err = cache.Image(coords, uniformGrid(coords, 1, 4, terrain.Grass))
	assert.ErrorIs(t, err, ErrStaleCacheRead)
}

func TestCache_ClearAndEvict(t *testing.T) {
	cache := NewCache(DefaultAtlas(2), 2)
	for i := 0; i < 3; i++ {
		c := vec.Vec2{X: i, Y: i}
		_, err := cache.Image(c, uniformGrid(c, 1, 2, terrain.Grass))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, cache.Len())
	assert.Len(t, cache.Coords(), 3)

	cache.Evict(vec.Vec2{X: 1, Y: 1})
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Lookup(vec.Vec2{}, 1)
	assert.False(t, ok)
}

func TestCache_SizeMismatchPanics(t *testing.T) {
	cache := NewCache(DefaultAtlas(2), 4)
	c := vec.Vec2{}
	assert.Panics(t, func() { _, _ = cache.Image(c, uniformGrid(c, 1, 3, terrain.Grass)) })
}

func TestCompose_ScalesAndPlaces(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	Compose(dst, []Blit{
		{ScreenX: 2, ScreenY: 2, Image: src, Scale: 2},
		{ScreenX: -100, ScreenY: -100, Image: src, Scale: 1},
	}, nil)

	assert.Equal(t, uint8(0xff), dst.RGBAAt(2, 2).R)
	assert.Equal(t, uint8(0xff), dst.RGBAAt(9, 9).R, "масштаб 2 растягивает 4px до 8px")
	assert.Equal(t, uint8(0), dst.RGBAAt(10, 10).R)
	assert.Equal(t, uint8(0), dst.RGBAAt(1, 1).R)
}

func TestBlit_BoundsSeamless(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	a := Blit{ScreenX: 0.3, ScreenY: 0, Image: img, Scale: 1.25}
	b := Blit{ScreenX: 0.3 + 12.5, ScreenY: 0, Image: img, Scale: 1.25}
	assert.Equal(t, a.Bounds().Max.X, b.Bounds().Min.X, "соседние чанки не должны иметь щели")
}

func TestDrawLabel(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 60))
	DrawLabel(dst, "seed 1337\nzoom 1.00", 10, 10)

	white := 0
	for y := 10; y < 50; y++ {
		for x := 10; x < 100; x++ {
			if dst.RGBAAt(x, y).R == 0xff {
				white++
			}
		}
	}
	assert.Greater(t, white, 0, "текст должен быть нарисован")
	assert.Equal(t, uint8(0xa0), dst.RGBAAt(11, 11).A, "подложка полупрозрачная")
	assert.Equal(t, uint8(0), dst.RGBAAt(199, 59).A, "вне подложки ничего не рисуется")
}
