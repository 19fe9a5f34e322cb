package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/annel0/terrain-viewer/internal/terrain"
	"github.com/annel0/terrain-viewer/internal/vec"
	"golang.org/x/image/draw"
)

// ErrStaleCacheRead запрос изображения по сетке из эпохи старше сохранённой записи
var ErrStaleCacheRead = errors.New("stale cache read")

type cachedImage struct {
	img   *image.RGBA
	epoch uint64
}

// Cache мемоизирует растеризованные чанки по координатам.
// Попадание не сверяет содержимое сетки, только эпоху.
// Не безопасен для конкурентного использования.
type Cache struct {
	atlas     Atlas
	chunkSize int
	tileSize  int
	images    map[vec.Vec2]cachedImage
	builds    int
}

// NewCache создаёт кеш изображений чанков
func NewCache(atlas Atlas, chunkSize int) *Cache {
	return &Cache{
		atlas:     atlas,
		chunkSize: chunkSize,
		tileSize:  atlas.TileSize(),
		images:    make(map[vec.Vec2]cachedImage),
	}
}

// Image возвращает изображение чанка, растеризуя сетку при промахе.
// Запись старшей эпохи, чем grid.Epoch, означает, что вызывающий держит устаревшую сетку.
func (c *Cache) Image(coords vec.Vec2, grid *terrain.TileGrid) (*image.RGBA, error) {
	if e, ok := c.images[coords]; ok {
		switch {
		case e.epoch == grid.Epoch:
			return e.img, nil
		case e.epoch > grid.Epoch:
			return nil, fmt.Errorf("%w: chunk %v cached at epoch %d, grid from epoch %d",
				ErrStaleCacheRead, coords, e.epoch, grid.Epoch)
		}
	}

	img := c.rasterize(grid)
	c.images[coords] = cachedImage{img: img, epoch: grid.Epoch}
	c.builds++
	return img, nil
}

// rasterize собирает изображение чанка из спрайтов атласа
func (c *Cache) rasterize(grid *terrain.TileGrid) *image.RGBA {
	if grid.Size() != c.chunkSize {
		panic(fmt.Sprintf("render: grid %v is %d tiles, cache expects %d", grid.Coords, grid.Size(), c.chunkSize))
	}

	side := c.chunkSize * c.tileSize
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < c.chunkSize; y++ {
		for x := 0; x < c.chunkSize; x++ {
			sprite := c.atlas.Sprite(grid.At(x, y))
			r := image.Rect(x*c.tileSize, y*c.tileSize, (x+1)*c.tileSize, (y+1)*c.tileSize)
			draw.Draw(dst, r, sprite, sprite.Bounds().Min, draw.Src)
		}
	}
	return dst
}

// Lookup возвращает изображение, если оно есть в указанной эпохе
func (c *Cache) Lookup(coords vec.Vec2, epoch uint64) (*image.RGBA, bool) {
	e, ok := c.images[coords]
	if !ok || e.epoch != epoch {
		return nil, false
	}
	return e.img, true
}

// Contains сообщает, есть ли изображение чанка в указанной эпохе
func (c *Cache) Contains(coords vec.Vec2, epoch uint64) bool {
	_, ok := c.Lookup(coords, epoch)
	return ok
}

// Coords возвращает координаты всех записей (порядок не определён)
func (c *Cache) Coords() []vec.Vec2 {
	out := make([]vec.Vec2, 0, len(c.images))
	for k := range c.images {
		out = append(out, k)
	}
	return out
}

// Evict удаляет изображение одного чанка
func (c *Cache) Evict(coords vec.Vec2) {
	delete(c.images, coords)
}

// Clear удаляет все изображения
func (c *Cache) Clear() {
	c.images = make(map[vec.Vec2]cachedImage)
}

// Len возвращает количество изображений
func (c *Cache) Len() int {
	return len(c.images)
}

// Builds возвращает количество выполненных растеризаций
func (c *Cache) Builds() int {
	return c.builds
}

// ChunkPixels возвращает сторону изображения чанка
func (c *Cache) ChunkPixels() int {
	return c.chunkSize * c.tileSize
}
