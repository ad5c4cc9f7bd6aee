package core

import "errors"

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrPathNotFound      = errors.New("folder does not exist")
	ErrNotDirectory      = errors.New("not a folder")
	ErrAlreadyLocked     = errors.New("folder is already locked")
	ErrNotLocked         = errors.New("folder is not locked")
	ErrPartialFailure    = errors.New("operation partially failed")
)
