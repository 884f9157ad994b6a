package model

import "time"

// HeadlineRef is a directed reference from one headline to another.
// The same row is a forward ref of the origin and a backward ref of the end.
type HeadlineRef struct {
	OriginID  uint `gorm:"primaryKey;autoIncrement:false;index:idx_headline_refs_origin_id"`
	EndID     uint `gorm:"primaryKey;autoIncrement:false;index:idx_headline_refs_end_id"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *HeadlineRef) TableName() string {
	return "headline_headline"
}
