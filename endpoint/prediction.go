package endpoint

import (
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/middleware"
	"github.com/ariebrainware/ml-pipeline-api/predictor"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
)

func predictorFrom(c *gin.Context) (*predictor.Service, bool) {
	svc := middleware.GetPredictor(c)
	if svc == nil {
		util.CallUpstreamUnavailable(c, util.APIErrorParams{
			Msg: "Prediction service not available",
			Err: fmt.Errorf("predictor is nil"),
		})
		return nil, false
	}
	return svc, true
}

// PredictPatient godoc
// @Summary      Predict diabetes class for a patient
// @Description  Scores the patient's profile and records the prediction
// @Produce      json
// @Param        patient_id path int true "PatientID"
// @Success      200 {object} util.APIResponse{data=predictor.Result} "Prediction made"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      429 {object} util.APIResponse "Rate limited"
// @Failure      503 {object} util.APIResponse "Model unavailable"
// @Router       /postgres/predict/patient/{patient_id} [post]
func PredictPatient(c *gin.Context) {
	patientID, ok := pathID(c, "patient_id")
	if !ok {
		return
	}
	svc, ok := predictorFrom(c)
	if !ok {
		return
	}

	result, err := svc.Predict(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, fmt.Sprintf("Prediction for patient %d failed", patientID), err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Prediction made", Data: result})
}

// PredictLatest godoc
// @Summary      Predict for the newest complete patient record
// @Produce      json
// @Success      200 {object} util.APIResponse{data=predictor.Result} "Prediction made"
// @Failure      404 {object} util.APIResponse "No complete patient record"
// @Failure      503 {object} util.APIResponse "Model unavailable"
// @Router       /postgres/predict/latest [post]
func PredictLatest(c *gin.Context) {
	svc, ok := predictorFrom(c)
	if !ok {
		return
	}
	result, err := svc.PredictLatest(c.Request.Context())
	if err != nil {
		respondError(c, "Prediction for the latest patient failed", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Prediction made", Data: result})
}

// PredictBatch godoc
// @Summary      Predict for several patients
// @Description  Body is a JSON array of 1 to 100 patient ids. Each id succeeds or fails on its own
// @Accept       json
// @Produce      json
// @Param        ids body []int64 true "Patient ids"
// @Success      200 {object} util.APIResponse{data=predictor.BatchSummary} "Batch finished"
// @Failure      422 {object} util.APIResponse "Invalid batch"
// @Failure      503 {object} util.APIResponse "Model unavailable"
// @Router       /postgres/predict/batch [post]
func PredictBatch(c *gin.Context) {
	var ids []int64
	if !bindJSON(c, &ids) {
		return
	}
	svc, ok := predictorFrom(c)
	if !ok {
		return
	}

	summary, err := svc.PredictBatch(c.Request.Context(), ids)
	if err != nil {
		respondError(c, "Batch prediction failed", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  fmt.Sprintf("Batch finished: %d of %d succeeded", summary.SuccessfulPredictions, summary.TotalRequested),
		Data: summary,
	})
}

// ListPredictions godoc
// @Summary      Prediction history
// @Description  Audit rows newest first, without feature snapshots
// @Produce      json
// @Param        skip query int false "Rows to skip" default(0)
// @Param        limit query int false "Page size (1..1000)" default(100)
// @Success      200 {object} util.APIResponse{data=object} "Predictions retrieved"
// @Router       /postgres/predictions [get]
func ListPredictions(c *gin.Context) {
	page, ok := pagination(c, defaultListLimit)
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	rows, total, err := repo.ListPredictions(c.Request.Context(), page)
	if err != nil {
		respondError(c, "Failed to retrieve predictions", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Predictions retrieved",
		Data: map[string]interface{}{
			"total":       total,
			"skip":        page.Skip,
			"limit":       page.Limit,
			"predictions": rows,
		},
	})
}

func PatientPredictions(c *gin.Context) {
	patientID, ok := pathID(c, "patient_id")
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	rows, err := repo.PredictionsForPatient(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, "Failed to retrieve predictions", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Patient predictions retrieved",
		Data: map[string]interface{}{
			"patient_id":        patientID,
			"total_predictions": len(rows),
			"predictions":       rows,
		},
	})
}
