package models

import (
	"time"
)

type Reading struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DeviceID    string    `gorm:"column:device_id;size:50" json:"device_id"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	Humidity    float64   `gorm:"not null" json:"humidity"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
}

func (Reading) TableName() string {
	return "readings"
}
