package models

type DeviceStatus string

const (
	StatusActive      DeviceStatus = "active"
	StatusInactive    DeviceStatus = "inactive"
	StatusMaintenance DeviceStatus = "maintenance"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

type PowerState string

const (
	PowerOn  PowerState = "ON"
	PowerOff PowerState = "OFF"
)

func (p PowerState) Valid() bool {
	return p == PowerOn || p == PowerOff
}

type Device struct {
	DeviceID    string       `gorm:"column:device_id;primaryKey;size:50" json:"device_id"`
	DeviceName  string       `gorm:"column:device_name;size:100;not null" json:"device_name"`
	Location    string       `gorm:"size:100" json:"location"`
	LabIncharge string       `gorm:"column:lab_incharge;size:100" json:"lab_incharge"`
	Status      DeviceStatus `gorm:"type:varchar(20);not null;default:active" json:"status"`
	PowerState  PowerState   `gorm:"column:power_state;type:varchar(3);not null;default:OFF" json:"power_state"`

	Readings []Reading `gorm:"foreignKey:DeviceID;references:DeviceID;constraint:OnDelete:CASCADE" json:"readings,omitempty"`

	// Вычисляется при чтении, в БД не хранится
	Connectivity Connectivity `gorm:"-" json:"connectivity,omitempty"`
}

func (Device) TableName() string {
	return "devices"
}
