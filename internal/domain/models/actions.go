// internal/domain/models/actions.go
package models

// Category classifies a ledger record by the area of the workflow it
// belongs to. Closed enum; writers must reject anything else before the
// record reaches the ledger.
type Category string

const (
	CategoryGroup      Category = "group"
	CategoryMember     Category = "member"
	CategoryThesis     Category = "thesis"
	CategoryProposal   Category = "proposal"
	CategorySubmission Category = "submission"
	CategorySchedule   Category = "schedule"
	CategorySystem     Category = "system"
)

// AllCategories lists every valid category.
var AllCategories = []Category{
	CategoryGroup,
	CategoryMember,
	CategoryThesis,
	CategoryProposal,
	CategorySubmission,
	CategorySchedule,
	CategorySystem,
}

// Action identifies what happened. Closed enum.
type Action string

// Group actions
const (
	ActionGroupCreated  Action = "group_created"
	ActionGroupUpdated  Action = "group_updated"
	ActionGroupApproved Action = "group_approved"
	ActionGroupRejected Action = "group_rejected"
	ActionGroupArchived Action = "group_archived"
	ActionLeaderChanged Action = "leader_changed"
)

// Member actions
const (
	ActionMemberJoined         Action = "member_joined"
	ActionMemberLeft           Action = "member_left"
	ActionMemberInvited        Action = "member_invited"
	ActionMemberRemoved        Action = "member_removed"
	ActionAdviserAssigned      Action = "adviser_assigned"
	ActionAdviserRemoved       Action = "adviser_removed"
	ActionEditorAssigned       Action = "editor_assigned"
	ActionEditorRemoved        Action = "editor_removed"
	ActionStatisticianAssigned Action = "statistician_assigned"
	ActionStatisticianRemoved  Action = "statistician_removed"
	ActionPanelAssigned        Action = "panel_assigned"
	ActionPanelRemoved         Action = "panel_removed"
)

// Thesis actions
const (
	ActionThesisTitleSet      Action = "thesis_title_set"
	ActionThesisTitleChanged  Action = "thesis_title_changed"
	ActionThesisStageChanged  Action = "thesis_stage_changed"
	ActionThesisAbstractSaved Action = "thesis_abstract_saved"
	ActionDocumentShared      Action = "document_shared"
	ActionCommentAdded        Action = "comment_added"
)

// Proposal actions
const (
	ActionProposalSubmitted Action = "proposal_submitted"
	ActionProposalApproved  Action = "proposal_approved"
	ActionProposalRejected  Action = "proposal_rejected"
	ActionProposalRevised   Action = "proposal_revised"
)

// Submission actions
const (
	ActionSubmissionUploaded      Action = "submission_uploaded"
	ActionSubmissionUpdated       Action = "submission_updated"
	ActionSubmissionApproved      Action = "submission_approved"
	ActionSubmissionRejected      Action = "submission_rejected"
	ActionSubmissionFullyApproved Action = "submission_fully_approved"
)

// Schedule actions
const (
	ActionDefenseScheduled   Action = "defense_scheduled"
	ActionDefenseRescheduled Action = "defense_rescheduled"
	ActionDefenseCompleted   Action = "defense_completed"
	ActionScheduleCreated    Action = "schedule_created"
	ActionScheduleUpdated    Action = "schedule_updated"
	ActionScheduleCancelled  Action = "schedule_cancelled"
	ActionDeadlineSet        Action = "deadline_set"
	ActionDeadlineExtended   Action = "deadline_extended"
)

// System actions
const (
	ActionAccountPromoted   Action = "account_promoted"
	ActionGradePosted       Action = "grade_posted"
	ActionSystemMaintenance Action = "system_maintenance"
)

// ActionsByCategory maps each category to its valid actions. A (category,
// action) pair is valid iff the action appears under the category here.
var ActionsByCategory = map[Category][]Action{
	CategoryGroup: {
		ActionGroupCreated, ActionGroupUpdated, ActionGroupApproved,
		ActionGroupRejected, ActionGroupArchived, ActionLeaderChanged,
	},
	CategoryMember: {
		ActionMemberJoined, ActionMemberLeft, ActionMemberInvited,
		ActionMemberRemoved, ActionAdviserAssigned, ActionAdviserRemoved,
		ActionEditorAssigned, ActionEditorRemoved,
		ActionStatisticianAssigned, ActionStatisticianRemoved,
		ActionPanelAssigned, ActionPanelRemoved,
	},
	CategoryThesis: {
		ActionThesisTitleSet, ActionThesisTitleChanged,
		ActionThesisStageChanged, ActionThesisAbstractSaved,
		ActionDocumentShared, ActionCommentAdded,
	},
	CategoryProposal: {
		ActionProposalSubmitted, ActionProposalApproved,
		ActionProposalRejected, ActionProposalRevised,
	},
	CategorySubmission: {
		ActionSubmissionUploaded, ActionSubmissionUpdated,
		ActionSubmissionApproved, ActionSubmissionRejected,
		ActionSubmissionFullyApproved,
	},
	CategorySchedule: {
		ActionDefenseScheduled, ActionDefenseRescheduled,
		ActionDefenseCompleted, ActionScheduleCreated,
		ActionScheduleUpdated, ActionScheduleCancelled,
		ActionDeadlineSet, ActionDeadlineExtended,
	},
	CategorySystem: {
		ActionAccountPromoted, ActionGradePosted, ActionSystemMaintenance,
	},
}

// ValidPair reports whether action belongs to category.
func ValidPair(category Category, action Action) bool {
	for _, a := range ActionsByCategory[category] {
		if a == action {
			return true
		}
	}
	return false
}
