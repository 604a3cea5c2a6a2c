package types

import "errors"

var (
	ErrNoProfilesFound      = errors.New("no billing profiles found. Please configure AWS CLI first")
	ErrNoValidProfilesFound = errors.New("none of the specified profiles were found in AWS configuration")
)
