package repository

import (
	"context"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/util"
)

// InsertPrediction stores one audit row. The generated PredictionID is
// written back into p by the same INSERT statement.
func (r *Repository) InsertPrediction(ctx context.Context, p *model.Prediction) error {
	return r.DB(ctx).Create(p).Error
}

// ListPredictions returns audit rows newest first without the feature snapshot.
func (r *Repository) ListPredictions(ctx context.Context, page util.Pagination) ([]model.Prediction, int64, error) {
	var total int64
	if err := r.DB(ctx).Model(&model.Prediction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []model.Prediction{}
	err := r.DB(ctx).
		Omit("FeatureSnapshot").
		Order(byColumn("PredictedAt", true)).
		Order(byPrimaryKey(true)).
		Offset(page.Skip).Limit(page.Limit).
		Find(&rows).Error
	return rows, total, err
}

// PredictionsForPatient returns every audit row of a patient, newest first.
func (r *Repository) PredictionsForPatient(ctx context.Context, patientID int64) ([]model.Prediction, error) {
	rows := []model.Prediction{}
	err := r.DB(ctx).
		Where(map[string]interface{}{"PatientID": patientID}).
		Order(byColumn("PredictedAt", true)).
		Order(byPrimaryKey(true)).
		Find(&rows).Error
	return rows, err
}
