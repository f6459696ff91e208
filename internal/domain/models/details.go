// internal/domain/models/details.go
package models

// DetailKind discriminates the payload variants a record's details can
// carry. Unknown kinds read back as KindCustom so foreign or future
// records never fail to decode.
type DetailKind string

const (
	KindNone     DetailKind = ""
	KindDiff     DetailKind = "diff"
	KindReason   DetailKind = "reason"
	KindSchedule DetailKind = "schedule"
	KindCustom   DetailKind = "custom"
)

// Details is the per-action payload attached to audit and notification
// records. It is a closed variant set: exactly the fields for Kind are
// populated, everything else stays zero. Use the constructors below
// rather than building the struct by hand.
type Details struct {
	Kind DetailKind `bson:"kind,omitempty" json:"kind,omitempty"`

	// KindDiff
	Previous string `bson:"previous,omitempty" json:"previous,omitempty"`
	New      string `bson:"new,omitempty" json:"new,omitempty"`

	// KindReason
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`

	// KindSchedule
	Date     string `bson:"date,omitempty" json:"date,omitempty"`
	Time     string `bson:"time,omitempty" json:"time,omitempty"`
	Location string `bson:"location,omitempty" json:"location,omitempty"`

	// KindCustom (and decode fallback for unknown kinds)
	Fields map[string]string `bson:"fields,omitempty" json:"fields,omitempty"`
}

// NoDetails is the empty payload.
func NoDetails() Details { return Details{} }

// DiffDetails records a previous/new value pair, e.g. a thesis stage change.
func DiffDetails(previous, next string) Details {
	return Details{Kind: KindDiff, Previous: previous, New: next}
}

// ReasonDetails records a human-supplied reason, e.g. a rejection.
func ReasonDetails(reason string) Details {
	return Details{Kind: KindReason, Reason: reason}
}

// ScheduleDetails records when and where a defense or consultation happens.
func ScheduleDetails(date, timeOfDay, location string) Details {
	return Details{Kind: KindSchedule, Date: date, Time: timeOfDay, Location: location}
}

// CustomDetails carries an open key/value bag for actions with no
// dedicated variant.
func CustomDetails(fields map[string]string) Details {
	return Details{Kind: KindCustom, Fields: fields}
}

// Normalize coerces unknown kinds to KindCustom. Readers call this after
// decode so switch statements over Kind stay total.
func (d Details) Normalize() Details {
	switch d.Kind {
	case KindNone, KindDiff, KindReason, KindSchedule, KindCustom:
		return d
	}
	d.Kind = KindCustom
	return d
}
