// internal/app/system/auditctx/context.go

// Package auditctx computes the addressing contexts audit and
// notification records are written under. All functions are pure; the
// current academic year is injected once at construction instead of
// being computed module-wide, so tests can pin it.
package auditctx

import (
	"fmt"

	"github.com/thesistrack/thesistrack/internal/app/system/scope"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fallback literals used when a group carries no department/course.
const (
	FallbackDepartment = "general"
	FallbackCourse     = "common"
)

// AddressingError reports a context whose fields disagree with its
// level: a required field is missing, or a field the level forbids is
// set. Always a programmer error; callers fail fast rather than
// defaulting past it.
type AddressingError struct {
	Level   models.Level
	Missing string
	Extra   string
}

func (e *AddressingError) Error() string {
	if e.Extra != "" {
		return fmt.Sprintf("auditctx: %s-level context must not set %s", e.Level, e.Extra)
	}
	return fmt.Sprintf("auditctx: %s-level context missing %s", e.Level, e.Missing)
}

// GroupContext addresses a group's ledger.
type GroupContext struct {
	Year       string
	Department string
	Course     string
	GroupID    primitive.ObjectID
}

// UserContext addresses one user's personal notifications at the level
// derived from their role.
type UserContext struct {
	UserID     primitive.ObjectID
	Level      models.Level
	Year       string
	Department string
	Course     string
}

// Validate enforces the level/field invariant in both directions:
// course implies both department and course set, department implies
// department set and course unset, year implies neither set.
func (c UserContext) Validate() error {
	if c.Year == "" {
		return &AddressingError{Level: c.Level, Missing: "year"}
	}
	switch c.Level {
	case models.LevelCourse:
		if c.Department == "" {
			return &AddressingError{Level: c.Level, Missing: "department"}
		}
		if c.Course == "" {
			return &AddressingError{Level: c.Level, Missing: "course"}
		}
	case models.LevelDepartment:
		if c.Department == "" {
			return &AddressingError{Level: c.Level, Missing: "department"}
		}
		if c.Course != "" {
			return &AddressingError{Level: c.Level, Extra: "course"}
		}
	case models.LevelYear:
		if c.Department != "" {
			return &AddressingError{Level: c.Level, Extra: "department"}
		}
		if c.Course != "" {
			return &AddressingError{Level: c.Level, Extra: "course"}
		}
	default:
		return &AddressingError{Level: c.Level, Missing: "level"}
	}
	return nil
}

// Builder produces contexts with a configured default academic year.
type Builder struct {
	defaultYear string
}

// NewBuilder creates a Builder. defaultYear is the injected current
// academic year, e.g. "2025-2026".
func NewBuilder(defaultYear string) *Builder {
	return &Builder{defaultYear: defaultYear}
}

// DefaultYear returns the injected academic year.
func (b *Builder) DefaultYear() string { return b.defaultYear }

// GroupContext computes the ledger address for a group. Never fails:
// blank fields fall back to the configured year and the fallback
// literals, so every group has a usable context.
func (b *Builder) GroupContext(g models.ThesisGroup) GroupContext {
	return b.GroupContextForYear(g, b.defaultYear)
}

// GroupContextForYear is GroupContext with a per-call year override.
func (b *Builder) GroupContextForYear(g models.ThesisGroup, year string) GroupContext {
	gc := GroupContext{
		Year:       g.Year,
		Department: g.Department,
		Course:     g.Course,
		GroupID:    g.ID,
	}
	if gc.Year == "" {
		gc.Year = year
	}
	if gc.Department == "" {
		gc.Department = FallbackDepartment
	}
	if gc.Course == "" {
		gc.Course = FallbackCourse
	}
	return gc
}

// UserContext computes where a recipient's personal copy of an event
// lives. profile may be nil (recipient unresolvable at fan-out time);
// the group's own department/course then stand in, so the recipient
// still gets a record instead of being silently skipped.
func (b *Builder) UserContext(userID primitive.ObjectID, profile *models.Profile, fallback GroupContext) UserContext {
	uc := UserContext{
		UserID: userID,
		Year:   fallback.Year,
	}
	if uc.Year == "" {
		uc.Year = b.defaultYear
	}

	role := models.RoleStudent
	if profile != nil {
		role = profile.Role
	}
	uc.Level = scope.PathLevelForRole(role)

	switch uc.Level {
	case models.LevelDepartment:
		uc.Department = pick(profileDepartment(profile), fallback.Department)
	case models.LevelCourse:
		uc.Department = pick(profileDepartment(profile), fallback.Department)
		uc.Course = pick(profileCourse(profile), fallback.Course)
	}

	return uc
}

func profileDepartment(p *models.Profile) string {
	if p == nil {
		return ""
	}
	return p.Department
}

func profileCourse(p *models.Profile) string {
	if p == nil {
		return ""
	}
	return p.Course
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
