package models

import "time"

// KVEntry is one row of the persisted key/value table.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primarykey;type:varchar(255)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
