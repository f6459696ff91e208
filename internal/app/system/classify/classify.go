// internal/app/system/classify/classify.go

// Package classify maps actions to UI severity and page segments. Both
// lookups are pure and total: unknown inputs get fallback values, never
// a panic. The segment mapping is consumed by badge counting and by the
// mark-by-segment flow; any second copy of it would let the two drift
// apart, so this package is the only place it exists.
package classify

import (
	"github.com/thesistrack/thesistrack/internal/domain/models"
)

// Severity is the display weight of an event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Segment names a navigation destination whose badge a record counts
// toward. SegmentNone means the record belongs to no page badge.
type Segment string

const (
	SegmentNone        Segment = ""
	SegmentGroup       Segment = "group"
	SegmentMembers     Segment = "members"
	SegmentThesis      Segment = "thesis"
	SegmentProposals   Segment = "proposals"
	SegmentSubmissions Segment = "submissions"
	SegmentSchedule    Segment = "schedule"
)

var severityByAction = map[models.Action]Severity{
	models.ActionGroupApproved:           SeveritySuccess,
	models.ActionGroupRejected:           SeverityError,
	models.ActionGroupArchived:           SeverityWarning,
	models.ActionMemberRemoved:           SeverityWarning,
	models.ActionAdviserRemoved:          SeverityWarning,
	models.ActionEditorRemoved:           SeverityWarning,
	models.ActionStatisticianRemoved:     SeverityWarning,
	models.ActionPanelRemoved:            SeverityWarning,
	models.ActionProposalApproved:        SeveritySuccess,
	models.ActionProposalRejected:        SeverityError,
	models.ActionSubmissionApproved:      SeveritySuccess,
	models.ActionSubmissionRejected:      SeverityError,
	models.ActionSubmissionFullyApproved: SeveritySuccess,
	models.ActionDefenseCompleted:        SeveritySuccess,
	models.ActionScheduleCancelled:       SeverityWarning,
	models.ActionDeadlineSet:             SeverityWarning,
	models.ActionGradePosted:             SeveritySuccess,
	models.ActionSystemMaintenance:       SeverityWarning,
}

// SeverityFor returns the display severity for an action. Actions not
// listed (and unknown actions) are info.
func SeverityFor(action models.Action) Severity {
	if s, ok := severityByAction[action]; ok {
		return s
	}
	return SeverityInfo
}

var segmentByCategory = map[models.Category]Segment{
	models.CategoryGroup:      SegmentGroup,
	models.CategoryMember:     SegmentMembers,
	models.CategoryThesis:     SegmentThesis,
	models.CategoryProposal:   SegmentProposals,
	models.CategorySubmission: SegmentSubmissions,
	models.CategorySchedule:   SegmentSchedule,
	models.CategorySystem:     SegmentNone,
}

// SegmentFor maps one record's classification to the page segment its
// badge belongs to. The mapping is category-driven with two exceptions:
//
//   - expert reviewers (adviser, editor, statistician, panel) see
//     member-assignment events under the group page, since they have no
//     members page of their own;
//   - grade_posted is a system action but lands on the thesis page for
//     students, where grades are displayed.
//
// details is accepted for parity with the record shape; no current
// action branches on it.
func SegmentFor(category models.Category, action models.Action, details models.Details, role models.Role) Segment {
	switch role {
	case models.RoleAdviser, models.RoleEditor, models.RoleStatistician, models.RolePanel:
		if category == models.CategoryMember {
			return SegmentGroup
		}
	}

	if action == models.ActionGradePosted && role == models.RoleStudent {
		return SegmentThesis
	}

	if s, ok := segmentByCategory[category]; ok {
		return s
	}
	return SegmentNone
}
