package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionEmployeesRead allows viewing employee lists and details.
	PermissionEmployeesRead Permission = "employees:read"

	// PermissionEmployeesWrite allows creating and updating employees.
	PermissionEmployeesWrite Permission = "employees:write"

	// PermissionEmployeesResetSession allows resetting an employee's active login session.
	PermissionEmployeesResetSession Permission = "employees:reset_session"

	// PermissionExamsRead allows viewing exam lists, details, and results.
	PermissionExamsRead Permission = "exams:read"

	// PermissionExamsWrite allows creating and updating exams and questions.
	PermissionExamsWrite Permission = "exams:write"

	// PermissionExamsPublish allows publishing exams to make them available to candidates.
	PermissionExamsPublish Permission = "exams:publish"

	// PermissionLeaveRead allows viewing leave requests and ledgers.
	PermissionLeaveRead Permission = "leave:read"

	// PermissionLeaveReview allows approving and rejecting leave requests.
	PermissionLeaveReview Permission = "leave:review"

	// PermissionAnnouncementsWrite allows creating, updating, and deleting announcements.
	PermissionAnnouncementsWrite Permission = "announcements:write"

	// PermissionAdminsRead allows viewing admin user lists and details.
	PermissionAdminsRead Permission = "admins:read"

	// PermissionAdminsWrite allows creating, updating, and deleting admin users.
	PermissionAdminsWrite Permission = "admins:write"

	// PermissionRolesRead allows viewing admin roles and permissions.
	PermissionRolesRead Permission = "roles:read"

	// PermissionRolesWrite allows creating, updating, and deleting admin roles.
	PermissionRolesWrite Permission = "roles:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionEmployeesRead,
	PermissionEmployeesWrite,
	PermissionEmployeesResetSession,
	PermissionExamsRead,
	PermissionExamsWrite,
	PermissionExamsPublish,
	PermissionLeaveRead,
	PermissionLeaveReview,
	PermissionAnnouncementsWrite,
	PermissionAdminsRead,
	PermissionAdminsWrite,
	PermissionRolesRead,
	PermissionRolesWrite,
}
