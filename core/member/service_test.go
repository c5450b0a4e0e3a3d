package member

import (
	"context"
	"errors"
	"testing"
)

type fakeLister struct {
	members []Member
	err     error
}

func (f *fakeLister) ListMembers(ctx context.Context, token string) ([]Member, error) {
	return f.members, f.err
}

func bPtr(b bool) *bool { return &b }

func memberIDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

func idsEqual(got []string, want ...string) bool {
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
	admin := Member{ID: "1", Name: "Admin", Username: "admin", Email: "admin@test.cd", IsActive: true, Roles: []string{RoleAdmin}}
	teacher := Member{ID: "2", Name: "Teacher", Username: "teach", Email: "teacher@test.cd", IsActive: true, Roles: []string{RoleTeacher + "math"}}
	student := Member{ID: "3", Name: "Hero", Username: "hero", Email: "hero@test.cd", IsActive: true, Roles: []string{RoleStudent}}
	naughty := Member{ID: "4", Name: "N Dog", Username: "ndog", Email: "ndog@test.cd", IsActive: false, Roles: []string{RoleStudent}}
	svc := NewService(&fakeLister{members: []Member{admin, teacher, student, naughty}})

	tests := []struct {
		name   string
		filter *QueryFilter
		want   []string
	}{
		{name: "no filter", want: []string{"1", "2", "3", "4"}},
		{name: "empty filter", filter: &QueryFilter{}, want: []string{"1", "2", "3", "4"}},
		{name: "search on name", filter: &QueryFilter{Search: "hero"}, want: []string{"3"}},
		{name: "search on username", filter: &QueryFilter{Search: "ndog"}, want: []string{"4"}},
		{name: "search on email", filter: &QueryFilter{Search: "@test.cd"}, want: []string{"1", "2", "3", "4"}},
		{name: "search (unknown)", filter: &QueryFilter{Search: "lol"}, want: []string{}},
		{name: "role=admin:", filter: &QueryFilter{Roles: []string{RoleAdmin}}, want: []string{"1"}},
		{name: "role=teacher:", filter: &QueryFilter{Roles: []string{RoleTeacher}}, want: []string{"2"}},
		{name: "role=teacher:,student:", filter: &QueryFilter{Roles: []string{RoleTeacher, RoleStudent}}, want: []string{"2", "3", "4"}},
		{name: "role (unknown)", filter: &QueryFilter{Roles: []string{"lol"}}, want: []string{}},
		{name: "is_active=true", filter: &QueryFilter{IsActive: bPtr(true)}, want: []string{"1", "2", "3"}},
		{name: "is_active=false", filter: &QueryFilter{IsActive: bPtr(false)}, want: []string{"4"}},
		{name: "combo", filter: &QueryFilter{Search: "o", Roles: []string{RoleStudent}, IsActive: bPtr(false)}, want: []string{"4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members, err := svc.Query(context.Background(), "tok", tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got := memberIDs(members); !idsEqual(got, tt.want...) {
				t.Errorf("Query() ids = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestService_Query_listError(t *testing.T) {
	wantErr := errors.New("503 from upstream")
	svc := NewService(&fakeLister{err: wantErr})

	if _, err := svc.Query(context.Background(), "tok", nil); !errors.Is(err, wantErr) {
		t.Errorf("Query() error = %v; want %v", err, wantErr)
	}
}

func TestMember_roles(t *testing.T) {
	m := Member{Roles: []string{RoleTeacher + "science"}}
	if !m.IsTeacher() {
		t.Error("IsTeacher() = false; want true")
	}
	if m.IsAdmin() || m.IsStudent() {
		t.Error("IsAdmin()/IsStudent() = true; want false")
	}
}
