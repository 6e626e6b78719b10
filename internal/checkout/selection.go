package checkout

import (
	"fmt"

	"github.com/printyshop/printy/internal/catalog"
	"github.com/printyshop/printy/internal/models"
)

const (
	placementMin = 10
	placementMax = 90
	scaleMin     = 10
	scaleMax     = 50
	defaultScale = 25
)

// Selection is the per-session customization state: what the user picked and
// where their design sits on the product. It never outlives the checkout
// session that owns it.
type Selection struct {
	Category     catalog.Category  `json:"category"`
	Color        string            `json:"color"`
	Size         string            `json:"size"`
	Quantity     int               `json:"quantity"`
	DesignURL    string            `json:"design_url,omitempty"`
	Placement    catalog.Placement `json:"placement"`
	Scale        int               `json:"scale"`
	Instructions string            `json:"instructions,omitempty"`

	product *models.Product
}

// NewSelection seeds the state with the product's declared defaults: first
// color, first size, quantity 1, category default placement.
func NewSelection(p *models.Product) (*Selection, error) {
	cat, err := catalog.ParseCategory(p.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s := &Selection{
		Category:  cat,
		Quantity:  1,
		Placement: cat.PrintArea().Placement,
		Scale:     defaultScale,
		product:   p,
	}
	if len(p.Colors) > 0 {
		s.Color = p.Colors[0]
	}
	if len(p.Sizes) > 0 {
		s.Size = p.Sizes[0]
	}
	return s, nil
}

func (s *Selection) SelectColor(color string) error {
	for _, c := range s.product.Colors {
		if c == color {
			s.Color = color
			return nil
		}
	}
	return fmt.Errorf("%w: color %q not offered", ErrValidation, color)
}

func (s *Selection) SelectSize(size string) error {
	for _, v := range s.product.Sizes {
		if v == size {
			s.Size = size
			return nil
		}
	}
	return fmt.Errorf("%w: size %q not offered", ErrValidation, size)
}

// AdjustQuantity applies a signed delta with floor 1.
func (s *Selection) AdjustQuantity(delta int) int {
	q := s.Quantity + delta
	if q < 1 {
		q = 1
	}
	s.Quantity = q
	return q
}

func (s *Selection) SetDesign(url string) {
	s.DesignURL = url
}

func (s *Selection) HasDesign() bool {
	return s.DesignURL != ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdjustPlacement moves the design by a signed delta per axis, each axis
// clamped independently.
func (s *Selection) AdjustPlacement(dx, dy int) catalog.Placement {
	s.Placement.X = clamp(s.Placement.X+dx, placementMin, placementMax)
	s.Placement.Y = clamp(s.Placement.Y+dy, placementMin, placementMax)
	return s.Placement
}

func (s *Selection) AdjustScale(delta int) int {
	s.Scale = clamp(s.Scale+delta, scaleMin, scaleMax)
	return s.Scale
}

func (s *Selection) SetInstructions(text string) {
	s.Instructions = text
}

// RenderPlacement is the placement actually used for rendering: the stored
// override for adjustable categories, the fixed category spot otherwise.
func (s *Selection) RenderPlacement() catalog.Placement {
	area := s.Category.PrintArea()
	if area.Adjustable {
		return s.Placement
	}
	return area.Placement
}
