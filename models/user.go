package models

import "time"

// UserRole представляет роли учётных записей.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// Permission - именованная возможность в системе. Это метка доступа,
// а не граница безопасности.
type Permission string

const (
	PermViewMembers         Permission = "view_members"
	PermViewPayments        Permission = "view_payments"
	PermViewAttendance      Permission = "view_attendance"
	PermViewDashboard       Permission = "view_dashboard"
	PermViewNotifications   Permission = "view_notifications"
	PermViewCommunication   Permission = "view_communication"
	PermEditMembers         Permission = "edit_members"
	PermDeleteMembers       Permission = "delete_members"
	PermManagePayments      Permission = "manage_payments"
	PermManageAttendance    Permission = "manage_attendance"
	PermManageEquipment     Permission = "manage_equipment"
	PermManageNotifications Permission = "manage_notifications"
	PermManageCommunication Permission = "manage_communication"
	PermManageUsers         Permission = "manage_users"
	PermManageBackup        Permission = "manage_backup"
	PermExportData          Permission = "export_data"
)

// User представляет учётную запись системы.
type User struct {
	ID           string              `json:"id"`
	Username     string              `json:"username"`
	Email        string              `json:"email"`
	PasswordHash string              `json:"-"`
	Role         UserRole            `json:"role"`
	Permissions  map[Permission]bool `json:"permissions"`
	IsActive     bool                `json:"is_active"`
	LastLogin    *time.Time          `json:"last_login,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// HasPermission проверяет наличие возможности у учётной записи.
func (u *User) HasPermission(p Permission) bool {
	return u.Permissions[p]
}

// DefaultPermissions возвращает набор возможностей по умолчанию для роли.
func DefaultPermissions(role UserRole) map[Permission]bool {
	perms := map[Permission]bool{
		PermViewMembers:       true,
		PermViewPayments:      true,
		PermViewAttendance:    true,
		PermViewDashboard:     true,
		PermViewNotifications: true,
		PermViewCommunication: true,
	}

	switch role {
	case RoleAdmin:
		perms[PermEditMembers] = true
		perms[PermDeleteMembers] = true
		perms[PermManagePayments] = true
		perms[PermManageAttendance] = true
		perms[PermManageEquipment] = true
		perms[PermManageNotifications] = true
		perms[PermManageCommunication] = true
		perms[PermManageUsers] = true
		perms[PermManageBackup] = true
		perms[PermExportData] = true
	case RoleManager:
		perms[PermEditMembers] = true
		perms[PermManagePayments] = true
		perms[PermManageAttendance] = true
		perms[PermManageEquipment] = true
		perms[PermManageNotifications] = true
		perms[PermManageCommunication] = true
		perms[PermExportData] = true
	}

	return perms
}

// ValidUserRole проверяет, что строка является известной ролью.
func ValidUserRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}
