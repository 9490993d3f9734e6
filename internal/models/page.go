package models

// Ограничения пагинации списков.
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page смещение и размер страницы списка.
type Page struct {
	Skip  int
	Limit int
}

// Normalize приводит значения к допустимым границам.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}
