package classify

import (
	"testing"

	"github.com/thesistrack/thesistrack/internal/domain/models"
)

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		action models.Action
		want   Severity
	}{
		{models.ActionGroupApproved, SeveritySuccess},
		{models.ActionGroupRejected, SeverityError},
		{models.ActionMemberRemoved, SeverityWarning},
		{models.ActionSubmissionFullyApproved, SeveritySuccess},
		{models.ActionGroupCreated, SeverityInfo},
		{models.Action("not_a_real_action"), SeverityInfo},
	}
	for _, tt := range tests {
		if got := SeverityFor(tt.action); got != tt.want {
			t.Errorf("SeverityFor(%s) = %s, want %s", tt.action, got, tt.want)
		}
	}
}

func TestSeverityTotalOverAllActions(t *testing.T) {
	valid := map[Severity]bool{SeverityInfo: true, SeveritySuccess: true, SeverityWarning: true, SeverityError: true}
	for _, actions := range models.ActionsByCategory {
		for _, a := range actions {
			if got := SeverityFor(a); !valid[got] {
				t.Errorf("SeverityFor(%s) = %q, not a known severity", a, got)
			}
		}
	}
}

func TestSegmentForCategoryDriven(t *testing.T) {
	tests := []struct {
		category models.Category
		want     Segment
	}{
		{models.CategoryGroup, SegmentGroup},
		{models.CategoryMember, SegmentMembers},
		{models.CategoryThesis, SegmentThesis},
		{models.CategoryProposal, SegmentProposals},
		{models.CategorySubmission, SegmentSubmissions},
		{models.CategorySchedule, SegmentSchedule},
		{models.CategorySystem, SegmentNone},
		{models.Category("unknown"), SegmentNone},
	}
	for _, tt := range tests {
		got := SegmentFor(tt.category, models.ActionGroupUpdated, models.Details{}, models.RoleStudent)
		if got != tt.want {
			t.Errorf("SegmentFor(%s, student) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestSegmentForExpertSeesMemberEventsUnderGroup(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdviser, models.RoleEditor, models.RoleStatistician, models.RolePanel} {
		got := SegmentFor(models.CategoryMember, models.ActionMemberJoined, models.Details{}, role)
		if got != SegmentGroup {
			t.Errorf("SegmentFor(member, %s) = %q, want group", role, got)
		}
	}
	// students keep the members page
	if got := SegmentFor(models.CategoryMember, models.ActionMemberJoined, models.Details{}, models.RoleStudent); got != SegmentMembers {
		t.Errorf("SegmentFor(member, student) = %q, want members", got)
	}
}

func TestSegmentForGradePosted(t *testing.T) {
	if got := SegmentFor(models.CategorySystem, models.ActionGradePosted, models.Details{}, models.RoleStudent); got != SegmentThesis {
		t.Errorf("grade_posted for student = %q, want thesis", got)
	}
	if got := SegmentFor(models.CategorySystem, models.ActionGradePosted, models.Details{}, models.RoleAdviser); got != SegmentNone {
		t.Errorf("grade_posted for adviser = %q, want none", got)
	}
}
