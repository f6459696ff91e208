// internal/app/system/scope/scope.go

// Package scope maps roles to audit visibility scopes and to the
// organizational level personal notifications are addressed at.
//
// PathLevelForRole is the single source of truth for addressing levels.
// Nothing else may re-derive a level from a role: a divergent copy would
// write notifications at a level the recipient cannot read back from,
// which is silent data loss.
package scope

import (
	"github.com/thesistrack/thesistrack/internal/domain/models"
)

// AvailableScopes returns the audit scopes a role may browse, in display
// order. The first element is the default selected scope.
func AvailableScopes(role models.Role) []models.Scope {
	scopes := []models.Scope{models.ScopeGroup, models.ScopePersonal}

	switch role {
	case models.RoleModerator:
		scopes = append(scopes, models.ScopeCourse)
	case models.RoleHead:
		scopes = append(scopes, models.ScopeDepartmental)
	case models.RoleAdmin, models.RoleDeveloper:
		scopes = append(scopes, models.ScopeAdmin)
	}

	return scopes
}

// PathLevelForRole returns the level a role's personal notifications
// live at. Total: unknown roles get the narrowest level (course), same
// as students.
func PathLevelForRole(role models.Role) models.Level {
	switch role {
	case models.RoleAdmin, models.RoleDeveloper:
		return models.LevelYear
	case models.RoleAdviser, models.RolePanel, models.RoleEditor,
		models.RoleModerator, models.RoleHead, models.RoleStatistician:
		return models.LevelDepartment
	default:
		return models.LevelCourse
	}
}
