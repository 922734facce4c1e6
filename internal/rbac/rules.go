package rbac

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Default policy.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"course:view",
		"enrollment:create",
		"lesson:complete",
		"quiz:view",
		"quiz:submit",
		"certificate:view",
		"certificate:issue",
		"coupon:validate",
		"dsa:view",
		"dsa:update",
		"user:change_password",
	},
	RoleTeacher: {
		"course:*",
		"enrollment:create",
		"lesson:*",
		"quiz:*",
		"certificate:view",
		"coupon:validate",
		"dsa:view",
		"users:list",
		"user:change_password",
	},
	RoleAdmin: {
		"*", // everything
	},
}
