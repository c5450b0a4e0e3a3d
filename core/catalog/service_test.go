package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLister struct {
	courses []Course
	err     error
}

func (f *fakeLister) ListCourses(ctx context.Context, token string) ([]Course, error) {
	return f.courses, f.err
}

func fPtr(f float64) *float64 { return &f }

func courseIDs(courses []Course) []int {
	ids := make([]int, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	return ids
}

func idsEqual(got []int, want ...int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestService_Query(t *testing.T) {
	now := time.Now().UTC()
	goCourse := Course{
		ID: 1, Title: "Go from scratch", Description: "Backend services in Go",
		Category: "Programming", Instructor: "Amina", Price: 49.99, CreatedAt: now,
	}
	pyCourse := Course{
		ID: 2, Title: "Python for data", Description: "Pandas and friends",
		Category: "Data", Instructor: "Bashir", Price: 29.99, CreatedAt: now.Add(time.Hour),
	}
	mathCourse := Course{
		ID: 3, Title: "Calculus I", Description: "Limits and derivatives",
		Category: "Math", Instructor: "Amina", Price: 0, CreatedAt: now.Add(2 * time.Hour),
	}
	svc := NewService(&fakeLister{courses: []Course{goCourse, pyCourse, mathCourse}})

	tests := []struct {
		name    string
		filter  *QueryFilter
		sortKey string
		want    []int
	}{
		{name: "no filter keeps server order", want: []int{1, 2, 3}},
		{name: "empty filter", filter: &QueryFilter{}, want: []int{1, 2, 3}},
		{name: "search on title", filter: &QueryFilter{Search: "go"}, want: []int{1}},
		{name: "search on description", filter: &QueryFilter{Search: "pandas"}, want: []int{2}},
		{name: "search on instructor", filter: &QueryFilter{Search: "amina"}, want: []int{1, 3}},
		{name: "search tolerates typos", filter: &QueryFilter{Search: "calculus 1"}, want: []int{3}},
		{name: "search (unknown)", filter: &QueryFilter{Search: "blockchain"}, want: []int{}},
		{name: "category", filter: &QueryFilter{Category: "data"}, want: []int{2}},
		{name: "category (unknown)", filter: &QueryFilter{Category: "cooking"}, want: []int{}},
		{name: "price_min", filter: &QueryFilter{PriceMin: fPtr(30)}, want: []int{1}},
		{name: "price_max", filter: &QueryFilter{PriceMax: fPtr(30)}, want: []int{2, 3}},
		{name: "price range", filter: &QueryFilter{PriceMin: fPtr(1), PriceMax: fPtr(40)}, want: []int{2}},
		{name: "combo", filter: &QueryFilter{Search: "amina", PriceMax: fPtr(10)}, want: []int{3}},
		{name: "sort by title", sortKey: "title", want: []int{3, 1, 2}},
		{name: "sort by price desc", sortKey: "-price", want: []int{1, 2, 3}},
		{name: "sort by created_at desc", sortKey: "-created_at", want: []int{3, 2, 1}},
		{name: "unknown sort key keeps server order", sortKey: "lol", want: []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := svc.Query(context.Background(), "tok", tt.filter, tt.sortKey)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got := courseIDs(courses); !idsEqual(got, tt.want...) {
				t.Errorf("Query() ids = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestService_Query_listError(t *testing.T) {
	wantErr := errors.New("503 from upstream")
	svc := NewService(&fakeLister{err: wantErr})

	if _, err := svc.Query(context.Background(), "tok", nil, ""); !errors.Is(err, wantErr) {
		t.Errorf("Query() error = %v; want %v", err, wantErr)
	}
}
