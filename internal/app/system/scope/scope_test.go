package scope

import (
	"testing"

	"github.com/thesistrack/thesistrack/internal/domain/models"
)

func TestAvailableScopes(t *testing.T) {
	tests := []struct {
		role models.Role
		want []models.Scope
	}{
		{models.RoleStudent, []models.Scope{models.ScopeGroup, models.ScopePersonal}},
		{models.RoleAdviser, []models.Scope{models.ScopeGroup, models.ScopePersonal}},
		{models.RoleModerator, []models.Scope{models.ScopeGroup, models.ScopePersonal, models.ScopeCourse}},
		{models.RoleHead, []models.Scope{models.ScopeGroup, models.ScopePersonal, models.ScopeDepartmental}},
		{models.RoleAdmin, []models.Scope{models.ScopeGroup, models.ScopePersonal, models.ScopeAdmin}},
		{models.RoleDeveloper, []models.Scope{models.ScopeGroup, models.ScopePersonal, models.ScopeAdmin}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := AvailableScopes(tt.role)
			if len(got) != len(tt.want) {
				t.Fatalf("AvailableScopes(%s) = %v, want %v", tt.role, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AvailableScopes(%s)[%d] = %s, want %s (order is significant)", tt.role, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAvailableScopesDefaultFirst(t *testing.T) {
	for _, role := range models.AllRoles {
		scopes := AvailableScopes(role)
		if len(scopes) == 0 {
			t.Fatalf("role %s has no scopes", role)
		}
		if scopes[0] != models.ScopeGroup {
			t.Errorf("role %s default scope = %s, want group", role, scopes[0])
		}
	}
}

func TestPathLevelForRole(t *testing.T) {
	tests := []struct {
		role models.Role
		want models.Level
	}{
		{models.RoleAdmin, models.LevelYear},
		{models.RoleDeveloper, models.LevelYear},
		{models.RoleAdviser, models.LevelDepartment},
		{models.RolePanel, models.LevelDepartment},
		{models.RoleEditor, models.LevelDepartment},
		{models.RoleModerator, models.LevelDepartment},
		{models.RoleHead, models.LevelDepartment},
		{models.RoleStatistician, models.LevelDepartment},
		{models.RoleStudent, models.LevelCourse},
	}
	for _, tt := range tests {
		if got := PathLevelForRole(tt.role); got != tt.want {
			t.Errorf("PathLevelForRole(%s) = %s, want %s", tt.role, got, tt.want)
		}
	}
}

func TestPathLevelForRoleTotal(t *testing.T) {
	// unknown roles must still address somewhere readable
	if got := PathLevelForRole(models.Role("visitor")); got != models.LevelCourse {
		t.Errorf("unknown role level = %s, want course", got)
	}
}
