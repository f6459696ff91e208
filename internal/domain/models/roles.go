// internal/domain/models/roles.go
package models

// Role is the closed set of user roles in the thesis workflow.
type Role string

const (
	RoleStudent      Role = "student"
	RoleAdviser      Role = "adviser"
	RolePanel        Role = "panel"
	RoleEditor       Role = "editor"
	RoleStatistician Role = "statistician"
	RoleModerator    Role = "moderator"
	RoleHead         Role = "head"
	RoleAdmin        Role = "admin"
	RoleDeveloper    Role = "developer"
)

// AllRoles lists every valid role. Used by validation and tests.
var AllRoles = []Role{
	RoleStudent,
	RoleAdviser,
	RolePanel,
	RoleEditor,
	RoleStatistician,
	RoleModerator,
	RoleHead,
	RoleAdmin,
	RoleDeveloper,
}

// Scope is the breadth of audit visibility a role is granted.
type Scope string

const (
	ScopePersonal     Scope = "personal"
	ScopeGroup        Scope = "group"
	ScopeCourse       Scope = "course"
	ScopeDepartmental Scope = "departmental"
	ScopeAdmin        Scope = "admin"
)

// Level is the organizational granularity at which a personal
// notification is addressed.
type Level string

const (
	LevelYear       Level = "year"
	LevelDepartment Level = "department"
	LevelCourse     Level = "course"
)
