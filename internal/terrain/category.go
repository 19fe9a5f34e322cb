package terrain

import "fmt"

// Category дискретный тип тайла.
// Порядок значений совпадает с порядком спрайтов в горизонтальном атласе.
type Category uint8

const (
	Snow Category = iota
	Mountain
	Forest // зарезервирован: порогами по умолчанию не выдаётся
	Grass
	Sand
	Water

	NumCategories // всегда последний: количество категорий
)

// String возвращает имя категории
func (c Category) String() string {
	switch c {
	case Snow:
		return "snow"
	case Mountain:
		return "mountain"
	case Forest:
		return "forest"
	case Grass:
		return "grass"
	case Sand:
		return "sand"
	case Water:
		return "water"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Valid сообщает, что значение входит в перечисление
func (c Category) Valid() bool {
	return c < NumCategories
}

// MustValid паникует на категории вне перечисления.
// Неизвестный id тайла означает нарушение контракта, а не состояние выполнения.
func (c Category) MustValid() Category {
	if !c.Valid() {
		panic(fmt.Sprintf("terrain: unknown tile category %d", uint8(c)))
	}
	return c
}

// All возвращает все категории в порядке атласа
func All() []Category {
	all := make([]Category, 0, NumCategories)
	for c := Category(0); c < NumCategories; c++ {
		all = append(all, c)
	}
	return all
}
