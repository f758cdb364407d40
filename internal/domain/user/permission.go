package user

import "slices"

type Permission string

const (
	// Attendance
	PermissionAttendanceRecord   Permission = "attendance.record"
	PermissionAttendanceViewOwn  Permission = "attendance.view_own"
	PermissionAttendanceViewTeam Permission = "attendance.view_team"
	PermissionAttendanceManage   Permission = "attendance.manage"

	// Absences
	PermissionAbsenceSubmit   Permission = "absence.submit"
	PermissionAbsenceViewOwn  Permission = "absence.view_own"
	PermissionAbsenceViewTeam Permission = "absence.view_team"
	PermissionAbsenceReview   Permission = "absence.review"

	// Users and coordinations
	PermissionUserViewTeam       Permission = "user.view_team"
	PermissionUserManage         Permission = "user.manage"
	PermissionCoordinationView   Permission = "coordination.view"
	PermissionCoordinationManage Permission = "coordination.manage"

	// System configuration
	PermissionSettingsView   Permission = "settings.view"
	PermissionSettingsManage Permission = "settings.manage"

	PermissionReportsExport Permission = "reports.export"
)

var collaboratorPermissions = []Permission{
	PermissionAttendanceRecord,
	PermissionAttendanceViewOwn,
	PermissionAbsenceSubmit,
	PermissionAbsenceViewOwn,
	PermissionSettingsView,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdministrador: append(slices.Clone(collaboratorPermissions),
		PermissionAttendanceViewTeam,
		PermissionAttendanceManage,
		PermissionAbsenceViewTeam,
		PermissionAbsenceReview,
		PermissionUserViewTeam,
		PermissionUserManage,
		PermissionCoordinationView,
		PermissionCoordinationManage,
		PermissionSettingsManage,
		PermissionReportsExport,
	),
	RoleCoordenador: append(slices.Clone(collaboratorPermissions),
		PermissionAttendanceViewTeam,
		PermissionAbsenceViewTeam,
		PermissionAbsenceReview,
		PermissionUserViewTeam,
		PermissionCoordinationView,
		PermissionReportsExport,
	),
	RoleColaborador: collaboratorPermissions,
}

// RoleHasPermission checks the static table only.
func RoleHasPermission(role Role, permission Permission) bool {
	return slices.Contains(RolePermissions[role], permission)
}

// HasPermission checks if a user may perform an action. Users that are not
// active have no permission, and an active role the user was never assigned
// grants nothing.
func HasPermission(u User, permission Permission) bool {
	if !u.IsActive() {
		return false
	}
	if !u.HasRole(u.ActiveRole) {
		return false
	}
	return RoleHasPermission(u.ActiveRole, permission)
}

// Permissions lists what u may currently do, for clients that hide affordances.
func Permissions(u User) []Permission {
	if !u.IsActive() || !u.HasRole(u.ActiveRole) {
		return []Permission{}
	}
	return slices.Clone(RolePermissions[u.ActiveRole])
}
