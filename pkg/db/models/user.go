package models

// User represents the canonical identity entity. Rows are immutable after
// sign-up except for credential rotation, which is not implemented.
type User struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string `gorm:"column:username;type:text;not null;uniqueIndex:idx_users_username"`
	HashedPwd string `gorm:"column:hashed_pwd;type:text;not null"`
}

func (User) TableName() string { return "users" }
