package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addLog(t *testing.T, r *Repository, table, column, rule string, patientID int64, at time.Time) {
	t.Helper()
	entry := model.ValidationLog{
		SourceTable:    table,
		PatientID:      &patientID,
		ColumnName:     column,
		Value:          "x",
		ValidationRule: rule,
		ErrorMessage:   "rejected",
		ValidatedAt:    at,
		ValidatedBy:    "etl",
	}
	require.NoError(t, CreateRow(context.Background(), r, &entry))
}

func TestValidationLogs(t *testing.T) {
	ctx := context.Background()
	r := setupTestRepo(t)
	now := time.Now().UTC()

	addLog(t, r, model.TableLifestyleFactors, "BMI", "range", 1, now.Add(-3*time.Hour))
	addLog(t, r, model.TableLifestyleFactors, "BMI", "range", 2, now.Add(-2*time.Hour))
	addLog(t, r, model.TablePatients, "Age", "not_null", 1, now.Add(-time.Hour))

	logs, total, err := r.ValidationLogs(ctx, nil, util.Pagination{Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	if assert.Len(t, logs, 3) {
		assert.Equal(t, "Age", logs[0].ColumnName)
	}

	patient := int64(1)
	logs, total, err = r.ValidationLogs(ctx, &patient, util.Pagination{Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	recent, err := r.RecentValidationLogs(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestValidationStats(t *testing.T) {
	ctx := context.Background()
	r := setupTestRepo(t)
	now := time.Now().UTC()

	addLog(t, r, model.TableLifestyleFactors, "BMI", "range", 1, now.Add(-time.Hour))
	addLog(t, r, model.TableLifestyleFactors, "BMI", "range", 2, now.Add(-2*time.Hour))
	addLog(t, r, model.TablePatients, "Age", "not_null", 3, now.Add(-48*time.Hour))

	stats, err := r.ValidationStats(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalFailures)
	assert.Equal(t, int64(2), stats.Recent24h)
	assert.Equal(t, []TableCount{{model.TableLifestyleFactors, 2}, {model.TablePatients, 1}}, stats.ByTable)
	assert.Equal(t, []ColumnCount{{"BMI", 2}, {"Age", 1}}, stats.ByColumn)
	assert.Equal(t, []RuleCount{{"range", 2}, {"not_null", 1}}, stats.CommonRules)
}

func TestClearAndDeleteValidationLogs(t *testing.T) {
	ctx := context.Background()
	r := setupTestRepo(t)
	now := time.Now().UTC()

	addLog(t, r, model.TablePatients, "Age", "not_null", 1, now.AddDate(0, 0, -40))
	addLog(t, r, model.TablePatients, "Age", "not_null", 2, now.AddDate(0, 0, -10))

	deleted, err := r.ClearValidationLogs(ctx, 30, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	logs, _, _ := r.ValidationLogs(ctx, nil, util.Pagination{Limit: 10})
	require.Len(t, logs, 1)
	assert.NoError(t, r.DeleteValidationLog(ctx, logs[0].ValidationID))
	assert.ErrorIs(t, r.DeleteValidationLog(ctx, logs[0].ValidationID), ErrNotFound)
}

func TestClearValidationLogsClampsDays(t *testing.T) {
	ctx := context.Background()
	r := setupTestRepo(t)
	now := time.Now().UTC()

	addLog(t, r, model.TablePatients, "Age", "not_null", 1, now.Add(-time.Hour))
	addLog(t, r, model.TablePatients, "Age", "not_null", 2, now.Add(-48*time.Hour))

	for _, days := range []int{math.MaxInt, MaxRetentionDays + 1} {
		deleted, err := r.ClearValidationLogs(ctx, days, now)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), deleted, "days=%d", days)
	}

	// Below one day is clamped to one: only the 48h old row goes.
	deleted, err := r.ClearValidationLogs(ctx, math.MinInt, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := r.ValidationLogs(ctx, nil, util.Pagination{Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestListPredictionsOmitsSnapshot(t *testing.T) {
	ctx := context.Background()
	r := setupTestRepo(t)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		row := model.Prediction{
			PatientID:       int64(i + 1),
			RawOutput:       0.5,
			PredictedLabel:  "Prediabetes",
			ModelVersion:    "test",
			PredictedAt:     now.Add(time.Duration(i) * time.Minute),
			FeatureSnapshot: []byte(`{"BMI":27.5}`),
		}
		require.NoError(t, r.InsertPrediction(ctx, &row))
		assert.NotZero(t, row.PredictionID)
	}

	rows, total, err := r.ListPredictions(ctx, util.Pagination{Limit: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, int64(3), rows[0].PatientID)
		assert.Empty(t, rows[0].FeatureSnapshot)
	}

	history, err := r.PredictionsForPatient(ctx, 2)
	assert.NoError(t, err)
	if assert.Len(t, history, 1) {
		assert.JSONEq(t, `{"BMI":27.5}`, string(history[0].FeatureSnapshot))
	}
}
