package repository

import (
	"context"
	"database/sql"
	"strconv"
)

// SettingKey is a stable enumerated configuration key. Settings used to
// be looked up by their human-readable display name; the enumerated
// keys keep the lookup stable while preserving the fallback-on-missing
// behavior as an explicit default per key.
type SettingKey string

const (
	SettingCardValidityMonths      SettingKey = "card_validity_months"
	SettingMaxRenewals             SettingKey = "max_renewals"
	SettingRenewalDays             SettingKey = "renewal_days"
	SettingLateFeeDailyRate        SettingKey = "late_fee_daily_rate"
	SettingLateFeeGraceDays        SettingKey = "late_fee_grace_days"
	SettingCancellationGraceMonths SettingKey = "cancellation_grace_months"
	SettingLoanPeriodDays          SettingKey = "loan_period_days"
	SettingCardExtensionFee        SettingKey = "card_extension_fee"
)

// settingDefaults documents the fallback value per key. A missing or
// malformed row silently falls back to these, it is never fatal.
var settingDefaults = map[SettingKey]int64{
	SettingCardValidityMonths:      12,
	SettingMaxRenewals:             2,
	SettingRenewalDays:             20,
	SettingLateFeeDailyRate:        5000,
	SettingLateFeeGraceDays:        2,
	SettingCancellationGraceMonths: 6,
	SettingLoanPeriodDays:          20,
	SettingCardExtensionFee:        50000,
}

// SettingRepo reads system_settings rows. Settings are read-only from
// the workflow's perspective.
type SettingRepo struct{ DB *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{DB: db} }

// Int returns the integer value stored under key, or the documented
// default when the row is missing or does not parse.
func (r *SettingRepo) Int(ctx context.Context, key SettingKey) int64 {
	var raw string
	err := r.DB.QueryRowContext(ctx,
		"SELECT setting_value FROM system_settings WHERE setting_key=? LIMIT 1",
		string(key)).Scan(&raw)
	if err != nil {
		return settingDefaults[key]
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return settingDefaults[key]
	}
	return n
}

// RenewalSettings bundles the two values the renewal engine needs.
type RenewalSettings struct {
	MaxRenewals int
	RenewalDays int
}

// Renewal returns the renewal cap and period, falling back to the
// defaults (2, 20) when either setting row is absent.
func (r *SettingRepo) Renewal(ctx context.Context) RenewalSettings {
	return RenewalSettings{
		MaxRenewals: int(r.Int(ctx, SettingMaxRenewals)),
		RenewalDays: int(r.Int(ctx, SettingRenewalDays)),
	}
}
