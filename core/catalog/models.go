package catalog

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Course is a purchasable course as served by the platform API.
type Course struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Instructor  string    `json:"instructor"`
	Price       float64   `json:"price"`
	CourseImg   string    `json:"course_img"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// QueryFilter narrows the course list; fields are combined with AND.
// Search does a case-insensitive fuzzy match on Title, Description or Instructor.
type QueryFilter struct {
	Search   string   `query:"search"`
	Category string   `query:"category"`
	PriceMin *float64 `query:"price_min"`
	PriceMax *float64 `query:"price_max"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.PriceMin == nil && qf.PriceMax == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}
