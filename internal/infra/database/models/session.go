package models

import (
	"time"
)

type Session struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	AccessToken string    `json:"-" gorm:"type:text"`
	Section     string    `json:"section" gorm:"type:text"`
	Title       string    `json:"title" gorm:"type:text"`
	Subtitle    string    `json:"subtitle" gorm:"type:text"`
	Files       string    `json:"files" gorm:"type:jsonb;not null;default:'[]'"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate       time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp();index"`
}
