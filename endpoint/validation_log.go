package endpoint

import (
	"time"

	"github.com/ariebrainware/ml-pipeline-api/repository"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
)

// ListValidationLogs godoc
// @Summary      List validation failures
// @Description  Newest first, optionally restricted to one patient
// @Produce      json
// @Param        patient_id query int false "PatientID"
// @Param        skip query int false "Rows to skip" default(0)
// @Param        limit query int false "Page size (1..1000)" default(100)
// @Success      200 {object} util.APIResponse{data=object} "Validation logs retrieved"
// @Failure      422 {object} util.APIResponse "Invalid query"
// @Router       /postgres/logs/validation [get]
func ListValidationLogs(c *gin.Context) {
	page, ok := pagination(c, defaultListLimit)
	if !ok {
		return
	}
	rawPatient, err := util.QueryInt(c, "patient_id", 0, 1, 0)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return
	}
	var patientID *int64
	if rawPatient > 0 {
		id := int64(rawPatient)
		patientID = &id
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	logs, total, err := repo.ValidationLogs(c.Request.Context(), patientID, page)
	if err != nil {
		respondError(c, "Failed to retrieve validation logs", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Validation logs retrieved",
		Data: map[string]interface{}{
			"total":    total,
			"skip":     page.Skip,
			"limit":    page.Limit,
			"returned": len(logs),
			"logs":     logs,
		},
	})
}

func RecentValidationLogs(c *gin.Context) {
	limit, ok := queryLimit(c, 50)
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	logs, err := repo.RecentValidationLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "Failed to retrieve validation logs", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Recent validation logs retrieved",
		Data: map[string]interface{}{"limit": limit, "returned": len(logs), "logs": logs},
	})
}

// ValidationLogStats godoc
// @Summary      Validation failure statistics
// @Produce      json
// @Success      200 {object} util.APIResponse{data=repository.ValidationStats} "Statistics retrieved"
// @Router       /postgres/logs/validation/stats [get]
func ValidationLogStats(c *gin.Context) {
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}
	stats, err := repo.ValidationStats(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, "Failed to compute validation statistics", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Validation statistics retrieved", Data: stats})
}

// ClearValidationLogs godoc
// @Summary      Delete old validation failures
// @Produce      json
// @Param        days query int false "Keep rows newer than this many days (1..36500)" default(30)
// @Success      200 {object} util.APIResponse{data=object} "Validation logs cleared"
// @Failure      422 {object} util.APIResponse "days out of range"
// @Router       /postgres/logs/validation/clear [delete]
func ClearValidationLogs(c *gin.Context) {
	days, err := util.QueryInt(c, "days", 30, 1, repository.MaxRetentionDays)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	deleted, err := repo.ClearValidationLogs(c.Request.Context(), days, time.Now())
	if err != nil {
		respondError(c, "Failed to clear validation logs", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Validation logs cleared",
		Data: map[string]interface{}{"deleted": deleted, "days": days},
	})
}

func DeleteValidationLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	if err := repo.DeleteValidationLog(c.Request.Context(), id); err != nil {
		respondError(c, "Validation log not found", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Validation log deleted",
		Data: map[string]interface{}{"id": id},
	})
}
