package model

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending          Status = "pending"
	StatusInProgress       Status = "in_progress"
	StatusWaitingForReview Status = "waiting_for_review"
	StatusCompleted        Status = "completed"
	StatusExpired          Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusWaitingForReview, StatusCompleted, StatusExpired:
		return true
	}
	return false
}

// Stage is the execution-workflow step of a task. It only carries meaning
// when Task.RequiresExecutionWorkflow is set.
type Stage string

const (
	StageNotStarted Stage = "not_started"
	StageStarted    Stage = "started"
	StageLocalDone  Stage = "local_done"
	StageLiveDone   Stage = "live_done"
)

func (s Stage) Valid() bool {
	switch s {
	case StageNotStarted, StageStarted, StageLocalDone, StageLiveDone:
		return true
	}
	return false
}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Frequency of a recurring definition.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Trigger decides how a recurring definition spawns its next task:
// by calendar schedule or by completion of the previous instance.
type Trigger string

const (
	TriggerSchedule   Trigger = "schedule"
	TriggerCompletion Trigger = "completion"
)

func (t Trigger) Valid() bool {
	return t == TriggerSchedule || t == TriggerCompletion
}

// NotificationType classifies a notification record.
type NotificationType string

const (
	NotificationAssignment NotificationType = "assignment"
	NotificationReminder   NotificationType = "reminder"
	NotificationOverdue    NotificationType = "overdue"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationAssignment, NotificationReminder, NotificationOverdue:
		return true
	}
	return false
}

// ReadState is the tri-state read marker on notifications.
type ReadState int

const (
	ReadStateUnread  ReadState = 0
	ReadStateRead    ReadState = 1
	ReadStateDeleted ReadState = 2
)

// Role of a caller. Admin, manager and owner share elevated permissions.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleOwner   Role = "owner"
)

// Elevated reports whether the role may create tasks, override transitions
// and manage the trash.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleOwner
}
