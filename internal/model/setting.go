package model

// SystemSetting is a named key to string-value configuration row.  The
// loan workflow reads these through typed accessors with documented
// defaults; a missing row is never fatal.
type SystemSetting struct {
	ID    uint64 // system_settings.id
	Key   string // system_settings.setting_key
	Value string // system_settings.setting_value
}
