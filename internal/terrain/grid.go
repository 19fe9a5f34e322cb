package terrain

import (
	"fmt"

	"github.com/annel0/terrain-viewer/internal/vec"
)

// TileGrid классифицированная сетка чанка size×size.
// Неизменяема после построения; принадлежит записи кеша ChunkStore.
type TileGrid struct {
	Coords vec.Vec2 // координаты чанка
	Epoch  uint64   // эпоха сида, в которой построена сетка
	size   int
	tiles  []Category // строка за строкой: tiles[y*size+x]
}

// NewTileGrid создаёт сетку из готовых категорий (len(tiles) == size*size)
func NewTileGrid(coords vec.Vec2, epoch uint64, size int, tiles []Category) *TileGrid {
	if len(tiles) != size*size {
		panic(fmt.Sprintf("terrain: grid %v needs %d tiles, got %d", coords, size*size, len(tiles)))
	}
	return &TileGrid{Coords: coords, Epoch: epoch, size: size, tiles: tiles}
}

// Size возвращает сторону сетки в тайлах
func (g *TileGrid) Size() int {
	return g.size
}

// At возвращает категорию по локальным координатам
func (g *TileGrid) At(x, y int) Category {
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		panic(fmt.Sprintf("terrain: local (%d,%d) outside %dx%d grid", x, y, g.size, g.size))
	}
	return g.tiles[y*g.size+x]
}

// Counts возвращает количество тайлов каждой категории
func (g *TileGrid) Counts() [NumCategories]int {
	var counts [NumCategories]int
	for _, c := range g.tiles {
		counts[c]++
	}
	return counts
}
