package models

import "errors"

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrDeviceExists       = errors.New("device already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid device status")
	ErrInvalidPowerState  = errors.New("invalid power state")
	ErrInvalidRange       = errors.New("invalid time range")
	ErrNoData             = errors.New("no data for the requested range")
)
