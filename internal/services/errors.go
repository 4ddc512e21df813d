package services

import "errors"

var (
	ErrNoSensorData  = errors.New("no sensor data available")
	ErrAPIKeyMissing = errors.New("API key not configured")
)
