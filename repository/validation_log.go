package repository

import (
	"context"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ValidationStats summarizes the validation log.
type ValidationStats struct {
	TotalFailures int64         `json:"total_failures"`
	Recent24h     int64         `json:"recent_24h"`
	ByTable       []TableCount  `json:"by_table"`
	ByColumn      []ColumnCount `json:"by_column"`
	CommonRules   []RuleCount   `json:"common_validation_rules"`
}

type TableCount struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

type ColumnCount struct {
	Column string `json:"column"`
	Count  int64  `json:"count"`
}

type RuleCount struct {
	Rule  string `json:"rule"`
	Count int64  `json:"count"`
}

func (r *Repository) validationQuery(ctx context.Context, patientID *int64) *gorm.DB {
	q := r.DB(ctx).Model(&model.ValidationLog{})
	if patientID != nil {
		q = q.Where(map[string]interface{}{"PatientID": *patientID})
	}
	return q
}

// ValidationLogs pages through the log newest first, optionally for one patient.
func (r *Repository) ValidationLogs(ctx context.Context, patientID *int64, page util.Pagination) ([]model.ValidationLog, int64, error) {
	var total int64
	if err := r.validationQuery(ctx, patientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	logs := []model.ValidationLog{}
	err := r.validationQuery(ctx, patientID).
		Order(byColumn("ValidatedAt", true)).
		Order(byPrimaryKey(true)).
		Offset(page.Skip).Limit(page.Limit).
		Find(&logs).Error
	return logs, total, err
}

func (r *Repository) RecentValidationLogs(ctx context.Context, limit int) ([]model.ValidationLog, error) {
	logs, _, err := r.ValidationLogs(ctx, nil, util.Pagination{Limit: limit})
	return logs, err
}

// groupCount counts rows per value of column, largest groups first.
func (r *Repository) groupCount(ctx context.Context, column string, limit int) ([]model.CountBy, error) {
	rows := []model.CountBy{}
	q := r.DB(ctx).Model(&model.ValidationLog{}).
		Select(`"` + column + `" AS name, COUNT(*) AS total`).
		Group(`"` + column + `"`).
		Order("total DESC").
		Order("name")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

// ValidationStats aggregates failures per table, column and rule.
func (r *Repository) ValidationStats(ctx context.Context, now time.Time) (ValidationStats, error) {
	stats := ValidationStats{}
	if err := r.DB(ctx).Model(&model.ValidationLog{}).Count(&stats.TotalFailures).Error; err != nil {
		return stats, err
	}
	err := r.DB(ctx).Model(&model.ValidationLog{}).
		Where(`"ValidatedAt" >= ?`, now.UTC().Add(-24*time.Hour)).
		Count(&stats.Recent24h).Error
	if err != nil {
		return stats, err
	}

	tables, err := r.groupCount(ctx, "TableName", 0)
	if err != nil {
		return stats, err
	}
	columns, err := r.groupCount(ctx, "ColumnName", 0)
	if err != nil {
		return stats, err
	}
	rules, err := r.groupCount(ctx, "ValidationRule", 5)
	if err != nil {
		return stats, err
	}

	stats.ByTable = lo.Map(tables, func(c model.CountBy, _ int) TableCount { return TableCount{c.Name, c.Count} })
	stats.ByColumn = lo.Map(columns, func(c model.CountBy, _ int) ColumnCount { return ColumnCount{c.Name, c.Count} })
	stats.CommonRules = lo.Map(rules, func(c model.CountBy, _ int) RuleCount { return RuleCount{c.Name, c.Count} })
	return stats, nil
}

func (r *Repository) DeleteValidationLog(ctx context.Context, id int64) error {
	return DeleteRow[model.ValidationLog](ctx, r, id)
}

// MaxRetentionDays bounds the days argument of ClearValidationLogs.
const MaxRetentionDays = 36500

// ClearValidationLogs deletes rows validated more than days days before now.
// days is clamped to 1..MaxRetentionDays so the cutoff never passes now.
func (r *Repository) ClearValidationLogs(ctx context.Context, days int, now time.Time) (int64, error) {
	days = lo.Clamp(days, 1, MaxRetentionDays)
	cutoff := now.UTC().AddDate(0, 0, -days)
	res := r.DB(ctx).Where(`"ValidatedAt" < ?`, cutoff).Delete(&model.ValidationLog{})
	if res.Error != nil {
		return 0, res.Error
	}
	log.WithFields(log.Fields{"deleted": res.RowsAffected, "days": days}).Info("validation logs cleared")
	return res.RowsAffected, nil
}
