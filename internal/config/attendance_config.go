package config

import (
	"strconv"
	"time"
)

// DeploymentMode selects the proximity threshold applied to scanned claims.
// "gps" assumes real GPS hardware; "degraded" is for deployments where
// location accuracy is known to be poor (e.g. laptop browsers).
type DeploymentMode string

const (
	DeploymentModeGPS      DeploymentMode = "gps"
	DeploymentModeDegraded DeploymentMode = "degraded"
)

const (
	gpsMaxDistanceMeters      = 10.0
	degradedMaxDistanceMeters = 10000.0
)

type AttendanceConfig interface {
	GetDeploymentMode() DeploymentMode
	GetMaxDistanceMeters() float64
	GetSessionDuration() time.Duration
	GetQRTokenMaxAge() time.Duration
	GetQRSecret() string
}

type Attendance struct{}

var _ AttendanceConfig = Attendance{}

func (Attendance) GetDeploymentMode() DeploymentMode {
	if GetEnv("DEPLOYMENT_MODE", "gps") == string(DeploymentModeDegraded) {
		return DeploymentModeDegraded
	}
	return DeploymentModeGPS
}

// GetMaxDistanceMeters returns the proximity threshold for the configured
// deployment mode. MAX_DISTANCE_METERS overrides the mode default.
func (a Attendance) GetMaxDistanceMeters() float64 {
	if v := GetEnv("MAX_DISTANCE_METERS", ""); v != "" {
		if meters, err := strconv.ParseFloat(v, 64); err == nil && meters > 0 {
			return meters
		}
	}
	if a.GetDeploymentMode() == DeploymentModeDegraded {
		return degradedMaxDistanceMeters
	}
	return gpsMaxDistanceMeters
}

func (Attendance) GetSessionDuration() time.Duration {
	if v := GetEnv("SESSION_DURATION_SECONDS", ""); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Minute
}

func (Attendance) GetQRTokenMaxAge() time.Duration {
	return 10 * time.Minute
}

func (Attendance) GetQRSecret() string {
	return GetEnv("QR_CODE_SECRET", "")
}
