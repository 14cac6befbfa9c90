package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"

	// Attendance
	PermissionAttendanceTrackOwn          Permission = "attendance.track_own"
	PermissionAttendanceViewOwn           Permission = "attendance.view_own"
	PermissionAttendanceViewAll           Permission = "attendance.view_all"
	PermissionAttendanceReviewCorrections Permission = "attendance.review_corrections"

	// Projects
	PermissionProjectCreate  Permission = "project.create"
	PermissionProjectViewAll Permission = "project.view_all"
	PermissionProjectManage  Permission = "project.manage"

	// Tasks
	PermissionTaskCreate Permission = "task.create"

	// Workspace
	PermissionWorkspaceManage Permission = "workspace.manage"
	PermissionMemberViewAll   Permission = "member.view_all"
	PermissionMemberManage    Permission = "member.manage"

	// Activity log
	PermissionActivityViewAll Permission = "activity.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionAttendanceTrackOwn,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceReviewCorrections,
		PermissionProjectCreate,
		PermissionProjectViewAll,
		PermissionProjectManage,
		PermissionTaskCreate,
		PermissionWorkspaceManage,
		PermissionMemberViewAll,
		PermissionMemberManage,
		PermissionActivityViewAll,
	},
	RoleManager: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionAttendanceTrackOwn,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceReviewCorrections,
		PermissionProjectCreate,
		PermissionProjectViewAll,
		PermissionTaskCreate,
		PermissionMemberViewAll,
		PermissionActivityViewAll,
	},
	RoleMember: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionAttendanceTrackOwn,
		PermissionAttendanceViewOwn,
		PermissionTaskCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
