package repoargs

type CreateUser struct {
	Username string
	// Password - уже захэшированный пароль.
	Password string
	FullName string
	Email    string
	Phone    string
	Address  string
	Photo    string
	Role     string
}

type UpdateProfile struct {
	UserID   int64
	FullName string
	Email    string
	Phone    string
	Address  string
	Photo    string
}
