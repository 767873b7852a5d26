package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"     json:"-"`
	PublicID     string    `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null"                     json:"-"`
	Admin        bool      `gorm:"not null;default:false"       json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Food struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"size:50;not null"         json:"name"`
	Date     time.Time `gorm:"autoCreateTime"           json:"date"`
	Location string    `gorm:"size:500"                 json:"location"`
	Zipcode  int64     `gorm:"index;not null"           json:"zipcode"`
}
