package entity

type UserRole string

const (
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	Base
	Name         string   `db:"name"`
	Email        string   `db:"email"`
	Mobile       string   `db:"mobile"`
	PasswordHash string   `db:"password"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
