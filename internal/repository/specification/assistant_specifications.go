package specification

import "gorm.io/gorm"

// BySlackChannel locates the assistant bound to a Slack channel.
type BySlackChannel struct {
	Channel string
}

func (s BySlackChannel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slack_channel = ?", s.Channel)
}

// PagerDutyEnabled selects assistants that answer incidents.
type PagerDutyEnabled struct{}

func (s PagerDutyEnabled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pager_duty_enabled = ?", true)
}
