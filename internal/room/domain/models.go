package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RoomStatus string

const (
	RoomStatusVacant      RoomStatus = "VACANT"
	RoomStatusOccupied    RoomStatus = "OCCUPIED"
	RoomStatusMaintenance RoomStatus = "MAINTENANCE"
)

type Room struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Number      string       `gorm:"not null;uniqueIndex" json:"number"`
	Floor       int          `gorm:"not null" json:"floor"`
	AreaSqm     float64      `gorm:"column:area_sqm" json:"area_sqm"`
	MonthlyRate int64        `gorm:"column:monthly_rate;not null" json:"monthly_rate"`
	Status      RoomStatus   `gorm:"type:text;not null;default:'VACANT'" json:"status"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }
