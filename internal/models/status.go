package models

import "time"

type Connectivity string

const (
	ConnectivityOnline  Connectivity = "online"
	ConnectivityOffline Connectivity = "offline"
)

// ProjectConnectivity определяет online/offline по последнему показанию.
// Устройство online, если последнее показание не старше window.
// Питание (PowerState) сюда не входит: оно задается только админом.
func ProjectConnectivity(last *Reading, now time.Time, window time.Duration) Connectivity {
	if last == nil {
		return ConnectivityOffline
	}
	if now.Sub(last.Timestamp) <= window {
		return ConnectivityOnline
	}
	return ConnectivityOffline
}

// LastReading возвращает самое свежее показание устройства или nil.
func LastReading(readings []Reading) *Reading {
	var last *Reading
	for i := range readings {
		if last == nil || readings[i].Timestamp.After(last.Timestamp) {
			last = &readings[i]
		}
	}
	return last
}
