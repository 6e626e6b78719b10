package catalog

import (
	"errors"
	"fmt"
)

var ErrUnknownCategory = errors.New("unknown category")

type Category string

const (
	CategoryApparel     Category = "Apparel"
	CategoryHomeLiving  Category = "Home & Living"
	CategoryWallArt     Category = "Wall Art"
	CategoryAccessories Category = "Accessories"
)

var Categories = []Category{CategoryApparel, CategoryHomeLiving, CategoryWallArt, CategoryAccessories}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Placement is a design overlay position in percent of the mockup area.
type Placement struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PrintArea describes how a category renders a custom design: the mockup image
// shown behind the overlay, where the design sits, and whether the user may move
// it. Only apparel exposes placement controls; other surfaces print at a fixed
// spot (center of mug, upper part of a phone case, center of canvas).
type PrintArea struct {
	MockupURL  string
	Placement  Placement
	Adjustable bool
}

func (c Category) PrintArea() PrintArea {
	switch c {
	case CategoryApparel:
		return PrintArea{
			Placement:  Placement{X: 50, Y: 40},
			Adjustable: true,
		}
	case CategoryHomeLiving:
		return PrintArea{
			MockupURL: "https://images.unsplash.com/photo-1544787219-7f47ccb76574?w=500",
			Placement: Placement{X: 50, Y: 45},
		}
	case CategoryAccessories:
		return PrintArea{
			MockupURL: "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=500",
			Placement: Placement{X: 50, Y: 35},
		}
	case CategoryWallArt:
		return PrintArea{
			MockupURL: "https://images.unsplash.com/photo-1513475382585-d06e58bcb0e0?w=500",
			Placement: Placement{X: 50, Y: 50},
		}
	}
	// Unreachable for parsed categories.
	return PrintArea{Placement: Placement{X: 50, Y: 50}}
}

// MockupURL picks the preview image for a product: apparel uses the product's
// own photo, other categories a neutral category mockup.
func (c Category) MockupURL(productImageURL string) string {
	area := c.PrintArea()
	if area.MockupURL == "" {
		return productImageURL
	}
	return area.MockupURL
}
