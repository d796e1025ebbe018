package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProblemNotFound    = errors.New("problem not found")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDemoLoginDisabled  = errors.New("demo login disabled")
	ErrInvalidRequirement = errors.New("unknown badge requirement")
)
