// Package chunk хранит классифицированные сетки тайлов по координатам чанка.
package chunk

import (
	"fmt"

	"github.com/annel0/terrain-viewer/internal/terrain"
	"github.com/annel0/terrain-viewer/internal/vec"
)

// Sampler источник шума для генерации чанков.
// Epoch меняется при каждой смене сида.
type Sampler interface {
	Sample(worldX, worldY float64) (float64, error)
	Epoch() uint64
}

// Option настраивает Store
type Option func(*Store)

// WithClassifier задаёт пороги классификации
func WithClassifier(c terrain.Classifier) Option {
	return func(s *Store) {
		s.classifier = c
	}
}

// Store генерирует и мемоизирует сетки тайлов.
// Записи действительны только в той эпохе сида, в которой созданы.
// Не безопасен для конкурентного использования: им владеет цикл рендера.
type Store struct {
	sampler    Sampler
	classifier terrain.Classifier
	size       int
	grids      map[vec.Vec2]*terrain.TileGrid
}

// NewStore создаёт хранилище чанков со стороной size тайлов
func NewStore(sampler Sampler, size int, opts ...Option) *Store {
	if size <= 0 {
		panic(fmt.Sprintf("chunk: size must be positive, got %d", size))
	}
	s := &Store{
		sampler:    sampler,
		classifier: terrain.DefaultClassifier,
		size:       size,
		grids:      make(map[vec.Vec2]*terrain.TileGrid),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size возвращает сторону чанка в тайлах
func (s *Store) Size() int {
	return s.size
}

// TileGrid возвращает сетку чанка, генерируя её при первом запросе в текущей эпохе.
// Повторные запросы возвращают тот же *TileGrid без выборки шума.
func (s *Store) TileGrid(coords vec.Vec2) (*terrain.TileGrid, error) {
	epoch := s.sampler.Epoch()
	if g, ok := s.grids[coords]; ok {
		if g.Epoch == epoch {
			return g, nil
		}
		// Запись прошлой эпохи считается промахом
		delete(s.grids, coords)
	}

	g, err := s.generate(coords, epoch)
	if err != nil {
		return nil, err
	}
	s.grids[coords] = g
	return g, nil
}

// generate сэмплирует size×size точек начиная с (cx*size, cy*size) и классифицирует их
func (s *Store) generate(coords vec.Vec2, epoch uint64) (*terrain.TileGrid, error) {
	origin := coords.Scale(s.size)
	tiles := make([]terrain.Category, s.size*s.size)

	for y := 0; y < s.size; y++ {
		for x := 0; x < s.size; x++ {
			worldX := float64(origin.X + x)
			worldY := float64(origin.Y + y)

			v, err := s.sampler.Sample(worldX, worldY)
			if err != nil {
				return nil, fmt.Errorf("ошибка генерации чанка %v: %w", coords, err)
			}
			tiles[y*s.size+x] = s.classifier.Classify(v)
		}
	}

	return terrain.NewTileGrid(coords, epoch, s.size, tiles), nil
}

// Contains сообщает, есть ли актуальная сетка для координат
func (s *Store) Contains(coords vec.Vec2) bool {
	g, ok := s.grids[coords]
	return ok && g.Epoch == s.sampler.Epoch()
}

// InvalidateAll удаляет все сетки. Вызывается синхронно при смене сида.
func (s *Store) InvalidateAll() {
	s.grids = make(map[vec.Vec2]*terrain.TileGrid)
}

// Evict удаляет сетку одного чанка
func (s *Store) Evict(coords vec.Vec2) {
	delete(s.grids, coords)
}

// Len возвращает количество хранимых сеток
func (s *Store) Len() int {
	return len(s.grids)
}
