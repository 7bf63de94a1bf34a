package users

import "errors"

var (
	ErrSelfDelete = errors.New("cannot delete own account")
	ErrSelfBlock  = errors.New("cannot block own account")
	ErrSelfDemote = errors.New("cannot change own role")
)
