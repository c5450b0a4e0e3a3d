package member

import (
	"context"
	"strings"
)

type (
	// Lister is any client able to fetch the full member directory from the platform.
	Lister interface {
		ListMembers(ctx context.Context, token string) ([]Member, error)
	}

	Service struct {
		api Lister
	}
)

func NewService(api Lister) *Service {
	return &Service{api: api}
}

// Query fetches the directory then applies the filter in memory.
func (svc *Service) Query(ctx context.Context, token string, filter *QueryFilter) ([]Member, error) {
	members, err := svc.api.ListMembers(ctx, token)
	if err != nil {
		return nil, err
	}
	if filter == nil || filter.IsEmpty() {
		return members, nil
	}

	// members with search keyword matching any Name, Username or Email ?
	if filter.Search != "" {
		var filtered []Member
		kw := strings.ToLower(filter.Search)
		for _, m := range members {
			if strings.Contains(strings.ToLower(m.Name), kw) ||
				strings.Contains(strings.ToLower(m.Username), kw) ||
				strings.Contains(strings.ToLower(m.Email), kw) {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	// members with any of the specified roles
	if members != nil && len(filter.Roles) > 0 {
		var filtered []Member
		for _, m := range members {
			for _, r := range filter.Roles {
				if m.RoleStartsWith(r) {
					filtered = append(filtered, m)
					break
				}
			}
		}
		members = filtered
	}
	if members != nil && filter.IsActive != nil {
		var filtered []Member
		for _, m := range members {
			if m.IsActive == *filter.IsActive {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	return members, nil
}
