package models

import (
	"time"
)

// Message is a stored inbound or outbound WhatsApp message
type Message struct {
	ID            string    `gorm:"primaryKey;type:varchar(255)" json:"id"` // wamid or generated uuid
	ContactID     string    `gorm:"index;type:varchar(50);not null" json:"contact_id"`
	Direction     string    `gorm:"type:varchar(10);not null" json:"direction"`
	DeclaredType  string    `gorm:"type:varchar(50)" json:"declared_type"`
	Content       string    `gorm:"type:text" json:"content"`
	MediaURL      string    `gorm:"type:text" json:"media_url"`
	FileExtension string    `gorm:"type:varchar(20)" json:"file_extension"`
	Status        string    `gorm:"type:varchar(20)" json:"status"`
	Timestamp     time.Time `gorm:"index;not null" json:"timestamp"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Contact represents a WhatsApp contact
type Contact struct {
	WaID          string     `gorm:"primaryKey" json:"wa_id"` // WhatsApp ID (phone number)
	Name          string     `gorm:"type:varchar(255)" json:"name"`
	ProfilePicURL string     `gorm:"type:text" json:"profile_pic_url"`
	Tags          string     `gorm:"type:text" json:"tags"` // Comma separated tags
	LastInboundAt *time.Time `gorm:"index" json:"last_inbound_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// Template is a cached copy of a template from the Business Account
type Template struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);index:idx_template_name_lang" json:"name"`
	Language   string    `gorm:"type:varchar(50);index:idx_template_name_lang" json:"language"`
	Category   string    `gorm:"type:varchar(100)" json:"category"`
	Status     string    `gorm:"type:varchar(50)" json:"status"`
	Components string    `gorm:"type:text" json:"components"` // JSON components
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

// SystemSetting persists credentials edited at runtime
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
