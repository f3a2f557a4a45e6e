package domain

import dErrors "mentorlab/pkg/domain-errors"

// Action is the kind of operation an audit event records.
type Action string

const (
	ActionCreate      Action = "CREATE"
	ActionRead        Action = "READ"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
	ActionLogin       Action = "LOGIN"
	ActionLogout      Action = "LOGOUT"
	ActionFailedLogin Action = "FAILED_LOGIN"
)

var validActions = map[Action]bool{
	ActionCreate:      true,
	ActionRead:        true,
	ActionUpdate:      true,
	ActionDelete:      true,
	ActionLogin:       true,
	ActionLogout:      true,
	ActionFailedLogin: true,
}

// ParseAction constructs an Action from external input.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid action")
	}
	return a, nil
}

func (a Action) IsValid() bool  { return validActions[a] }
func (a Action) String() string { return string(a) }

// EntityType is the kind of record an audit event addresses.
type EntityType string

const (
	EntityUser       EntityType = "USER"
	EntityAssignment EntityType = "ASSIGNMENT"
	EntityResource   EntityType = "RESOURCE"
	EntitySubmission EntityType = "SUBMISSION"
	EntityComment    EntityType = "COMMENT"
)

var validEntityTypes = map[EntityType]bool{
	EntityUser:       true,
	EntityAssignment: true,
	EntityResource:   true,
	EntitySubmission: true,
	EntityComment:    true,
}

// ParseEntityType constructs an EntityType from external input.
func ParseEntityType(s string) (EntityType, error) {
	e := EntityType(s)
	if !e.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid entity type")
	}
	return e, nil
}

func (e EntityType) IsValid() bool  { return validEntityTypes[e] }
func (e EntityType) String() string { return string(e) }

// TimePeriod labels which aggregation window triggered a monitoring flag.
type TimePeriod string

const (
	PeriodLastHour TimePeriod = "LAST_HOUR"
	PeriodLast24   TimePeriod = "LAST_24_HOURS"
)

// ParseTimePeriod constructs a TimePeriod from external input.
func ParseTimePeriod(s string) (TimePeriod, error) {
	p := TimePeriod(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid time period")
	}
	return p, nil
}

func (p TimePeriod) IsValid() bool {
	return p == PeriodLastHour || p == PeriodLast24
}

func (p TimePeriod) String() string { return string(p) }

// Role is a platform user role. Roles gate the admin surface; MENTOR and
// MENTEE are carried for display enrichment only.
type Role string

const (
	RoleMentor Role = "MENTOR"
	RoleMentee Role = "MENTEE"
	RoleAdmin  Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleMentor: true,
	RoleMentee: true,
	RoleAdmin:  true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool  { return validRoles[r] }
func (r Role) String() string { return string(r) }
