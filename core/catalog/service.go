package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// similarityThreshold is the minimum difflib quick ratio for a search
// keyword to be considered a fuzzy match on a course title.
const similarityThreshold = 0.75

type (
	// Lister is any client able to fetch the full course list from the platform.
	Lister interface {
		ListCourses(ctx context.Context, token string) ([]Course, error)
	}

	Service struct {
		api Lister
	}
)

func NewService(api Lister) *Service {
	return &Service{api: api}
}

// Query fetches all courses then applies filter and ordering in memory.
// sortKey is a Course field name ("title", "price", "created_at"), optionally
// prefixed with "-" for descending order; empty keeps the server order.
func (svc *Service) Query(ctx context.Context, token string, filter *QueryFilter, sortKey string) ([]Course, error) {
	courses, err := svc.api.ListCourses(ctx, token)
	if err != nil {
		return nil, err
	}

	if filter != nil && !filter.IsEmpty() {
		courses = filterCourses(courses, *filter)
	}
	sortCourses(courses, sortKey)
	return courses, nil
}

func filterCourses(courses []Course, filter QueryFilter) []Course {
	if filter.Search != "" {
		var filtered []Course
		for _, c := range courses {
			if matchesSearch(c, filter.Search) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.Category != "" {
		var filtered []Course
		for _, c := range courses {
			if strings.ToLower(c.Category) == filter.Category {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.PriceMin != nil {
		var filtered []Course
		for _, c := range courses {
			if c.Price >= *filter.PriceMin {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.PriceMax != nil {
		var filtered []Course
		for _, c := range courses {
			if c.Price <= *filter.PriceMax {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	return courses
}

func matchesSearch(c Course, search string) bool {
	kw := strings.ToLower(search)
	if strings.Contains(strings.ToLower(c.Title), kw) ||
		strings.Contains(strings.ToLower(c.Description), kw) ||
		strings.Contains(strings.ToLower(c.Instructor), kw) {
		return true
	}
	// tolerate typos on the title
	ratio := difflib.NewMatcher(
		strings.Split(kw, ""),
		strings.Split(strings.ToLower(c.Title), ""),
	).QuickRatio()
	return ratio >= similarityThreshold
}

func sortCourses(courses []Course, sortKey string) {
	ascending := true
	if strings.HasPrefix(sortKey, "-") {
		ascending = false
		sortKey = sortKey[1:]
	}

	var less func(i, j int) bool
	switch sortKey {
	case "title":
		less = func(i, j int) bool {
			return strings.ToLower(courses[i].Title) < strings.ToLower(courses[j].Title)
		}
	case "price":
		less = func(i, j int) bool { return courses[i].Price < courses[j].Price }
	case "created_at":
		less = func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) }
	default:
		return
	}

	if !ascending {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	sort.SliceStable(courses, less)
}
