package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// 演示账号，对应演示登录
const (
	DemoUserID    = "demo-user"
	DemoUserEmail = "demo@example.com"
)
