// Package input переводит дискретные команды пользователя в действия камеры и конвейера.
// Сопоставление клавиш командам делает внешний цикл окна.
package input

import (
	"fmt"
	"math/rand"

	"github.com/annel0/terrain-viewer/internal/camera"
	"github.com/annel0/terrain-viewer/internal/config"
	"github.com/annel0/terrain-viewer/internal/noise"
)

// Direction направление сдвига камеры
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Kind тип команды
type Kind uint8

const (
	KindPan Kind = iota
	KindZoomIn
	KindZoomOut
	KindReseed
)

// Command одна команда пользователя
type Command struct {
	Kind      Kind
	Direction Direction // только для KindPan
}

// Pan создаёт команду сдвига
func Pan(d Direction) Command { return Command{Kind: KindPan, Direction: d} }

// ZoomIn создаёт команду приближения
func ZoomIn() Command { return Command{Kind: KindZoomIn} }

// ZoomOut создаёт команду отдаления
func ZoomOut() Command { return Command{Kind: KindZoomOut} }

// Reseed создаёт команду смены сида
func Reseed() Command { return Command{Kind: KindReseed} }

// String возвращает имя команды для логов
func (c Command) String() string {
	switch c.Kind {
	case KindPan:
		return fmt.Sprintf("pan(%s)", c.Direction)
	case KindZoomIn:
		return "zoomIn"
	case KindZoomOut:
		return "zoomOut"
	case KindReseed:
		return "reseed"
	default:
		return fmt.Sprintf("command(%d)", c.Kind)
	}
}

// String возвращает имя направления
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", d)
	}
}

// Target принимает команды контроллера
type Target interface {
	Camera() *camera.Camera
	Reseed(seed int64)
}

// Controller применяет команды к камере и конвейеру
type Controller struct {
	target     Target
	panSpeed   float64
	zoomFactor float64
	rng        *rand.Rand
}

// NewController создаёт контроллер; rng используется для случайного сида
func NewController(target Target, cfg config.CameraConfig, rng *rand.Rand) *Controller {
	return &Controller{
		target:     target,
		panSpeed:   cfg.PanSpeed,
		zoomFactor: cfg.ZoomFactor,
		rng:        rng,
	}
}

// Apply выполняет одну команду.
// Для смены сида возвращает новый сид, иначе 0.
func (c *Controller) Apply(cmd Command) int64 {
	cam := c.target.Camera()
	switch cmd.Kind {
	case KindPan:
		switch cmd.Direction {
		case Up:
			cam.Move(0, -c.panSpeed)
		case Down:
			cam.Move(0, c.panSpeed)
		case Left:
			cam.Move(-c.panSpeed, 0)
		case Right:
			cam.Move(c.panSpeed, 0)
		default:
			panic(fmt.Sprintf("input: unknown direction %d", cmd.Direction))
		}
	case KindZoomIn:
		cam.ZoomIn(c.zoomFactor)
	case KindZoomOut:
		cam.ZoomOut(c.zoomFactor)
	case KindReseed:
		seed := noise.RandomSeed(c.rng)
		c.target.Reseed(seed)
		return seed
	default:
		panic(fmt.Sprintf("input: unknown command kind %d", cmd.Kind))
	}
	return 0
}

// ApplyAll выполняет команды по порядку
func (c *Controller) ApplyAll(cmds []Command) {
	for _, cmd := range cmds {
		c.Apply(cmd)
	}
}
