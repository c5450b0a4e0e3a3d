package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/trezcool/darasa/core/member"
)

func Test_memberApi_query(t *testing.T) {
	defer api.reset()

	admin := member.Member{ID: "1", Name: "Admin", Username: "admin", Email: "admin@test.cd", IsActive: true, Roles: []string{member.RoleAdmin}}
	student := member.Member{ID: "2", Name: "Hero", Username: "hero", Email: "hero@test.cd", IsActive: true, Roles: []string{member.RoleStudent}}
	api.members = []member.Member{admin, student}

	adminToken := getToken(t, "adm", "adm@test.cd", true)

	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/members?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/members", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/members", token: getToken(t, "stu", "stu@test.cd"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/v1/members", token: adminToken, wantData: marchallObj(t, []member.Member{admin, student})},
		{name: "search", path: path("hero"), token: adminToken, wantData: marchallObj(t, []member.Member{student})},
		{name: "role=student:", path: path("", member.RoleStudent), token: adminToken, wantData: marchallObj(t, []member.Member{student})},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantData: marchallObj(t, []member.Member{})},
		{name: "is_active (malformed)", path: "/v1/members?is_active=lol", token: adminToken, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
