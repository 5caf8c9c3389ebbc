package models

// Роль, дающая полный доступ ко всем запросам данных
const RoleSysadmin = "sysadmin"

// Identity - принципал запроса. Аутентификацию выполняет шлюз,
// сюда идентификатор и роль приходят уже проверенными.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

func (i Identity) IsSysadmin() bool {
	return i.Role == RoleSysadmin
}
