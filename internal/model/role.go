package model

// Role 用户角色（封闭集合）
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleReceptionist Role = "Receptionist"
	RoleApprover     Role = "Approver"
	RoleSecurity     Role = "Security"
)

// Roles 全部合法角色
var Roles = []Role{RoleAdmin, RoleReceptionist, RoleApprover, RoleSecurity}

// ParseRole 解析角色字符串，非法值返回 false
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Capability 操作能力；路由与 Service 只通过 Role.Can 判断权限
type Capability int

const (
	CapManageMasterData Capability = iota + 1 // 仓库、时间段、访客类型
	CapManageWorkflows
	CapManageUsers
	CapViewAllRequests
	CapEditRequests
	CapDecideRequests
	CapViewAssignedRequests
	CapRecordVisits
	CapViewReception
	CapViewStats
	CapExportRequests
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageMasterData:     true,
		CapManageWorkflows:      true,
		CapManageUsers:          true,
		CapViewAllRequests:      true,
		CapEditRequests:         true,
		CapViewAssignedRequests: true,
		CapViewReception:        true,
		CapViewStats:            true,
		CapExportRequests:       true,
	},
	RoleApprover: {
		CapDecideRequests:       true,
		CapViewAssignedRequests: true,
	},
	RoleReceptionist: {
		CapRecordVisits:  true,
		CapViewReception: true,
	},
	RoleSecurity: {
		CapRecordVisits:  true,
		CapViewReception: true,
	},
}

// Can 判断角色是否具备某项能力
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// HomePath 登录后前端跳转路径
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin/admin-dashboard"
	case RoleApprover:
		return "/approver/dashboard"
	case RoleReceptionist:
		return "/receptionist/dashboard"
	case RoleSecurity:
		return "/security/dashboard"
	default:
		return "/login"
	}
}
