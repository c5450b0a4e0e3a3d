package member

import (
	"strings"
	"time"

	"github.com/trezcool/darasa/core"
)

// Roles
const (
	RoleAdmin   = "admin:"
	RoleTeacher = "teacher:"
	RoleStudent = "student:"
)

// Member is a platform account as served by the users directory.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (m *Member) RoleStartsWith(prefix string) bool {
	for _, role := range m.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (m *Member) IsAdmin() bool   { return m.RoleStartsWith(RoleAdmin) }
func (m *Member) IsTeacher() bool { return m.RoleStartsWith(RoleTeacher) }
func (m *Member) IsStudent() bool { return m.RoleStartsWith(RoleStudent) }

// QueryFilter narrows the member directory; fields are combined with AND.
// Search does a case-insensitive match on one of Name, Username or Email.
type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive *bool    `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
