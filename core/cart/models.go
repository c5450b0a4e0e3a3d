package cart

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Item is a pending course purchase held in a user's cart.
type Item struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	CourseImg string  `json:"course_img"`
}

func (it Item) Subtotal() float64 {
	return it.Price * float64(it.Quantity)
}

// NewItem contains information needed to add an Item to the cart.
type NewItem struct {
	ID        int     `json:"id" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"omitempty,gte=1"`
	CourseImg string  `json:"course_img"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Title = core.CleanString(ni.Title)
	if ni.Quantity == 0 {
		ni.Quantity = 1
	}
	return validate.Struct(ni)
}

func (ni NewItem) item() Item {
	return Item{
		ID:        ni.ID,
		Title:     ni.Title,
		Price:     ni.Price,
		Quantity:  ni.Quantity,
		CourseImg: ni.CourseImg,
	}
}
