package endpoint

import (
	"context"
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/repository"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
)

// Resource serves one table of the relational backend. T is the gorm model
// and P the request body of create and update.
type Resource[T any, P any] struct {
	// Name is used in response messages, Plural as the list key.
	Name   string
	Plural string

	build  func(P) T
	fields func(P) map[string]interface{}
	// owner is set for child tables whose rows reference a patient.
	owner  func(P) *int64
	remove func(ctx context.Context, repo *repository.Repository, id int64) error
}

var (
	Patients = Resource[model.Patient, model.PatientPayload]{
		Name:   "Patient",
		Plural: "patients",
		build:  model.PatientPayload.Patient,
		fields: model.PatientPayload.Fields,
		remove: func(ctx context.Context, repo *repository.Repository, id int64) error {
			return repo.DeletePatient(ctx, id)
		},
	}
	HealthConditions = Resource[model.HealthCondition, model.HealthConditionPayload]{
		Name:   "Health condition",
		Plural: "health_conditions",
		build:  model.HealthConditionPayload.HealthCondition,
		fields: model.HealthConditionPayload.Fields,
		owner:  model.HealthConditionPayload.OwnerID,
	}
	LifestyleFactors = Resource[model.LifestyleFactor, model.LifestyleFactorPayload]{
		Name:   "Lifestyle factor",
		Plural: "lifestyle_factors",
		build:  model.LifestyleFactorPayload.LifestyleFactor,
		fields: model.LifestyleFactorPayload.Fields,
		owner:  model.LifestyleFactorPayload.OwnerID,
	}
	HealthMetrics = Resource[model.HealthMetric, model.HealthMetricPayload]{
		Name:   "Health metric",
		Plural: "health_metrics",
		build:  model.HealthMetricPayload.HealthMetric,
		fields: model.HealthMetricPayload.Fields,
		owner:  model.HealthMetricPayload.OwnerID,
	}
	HealthcareAccess = Resource[model.HealthcareAccess, model.HealthcareAccessPayload]{
		Name:   "Healthcare access",
		Plural: "healthcare_access",
		build:  model.HealthcareAccessPayload.HealthcareAccess,
		fields: model.HealthcareAccessPayload.Fields,
		owner:  model.HealthcareAccessPayload.OwnerID,
	}
)

// HasOwner reports whether rows belong to a patient, i.e. whether the
// by-patient route applies.
func (res Resource[T, P]) HasOwner() bool {
	return res.owner != nil
}

// List godoc
// @Summary      List rows
// @Description  Page through the table in primary key order
// @Produce      json
// @Param        skip query int false "Rows to skip" default(0)
// @Param        limit query int false "Page size (1..1000)" default(100)
// @Success      200 {object} util.APIResponse{data=object} "Rows retrieved"
// @Failure      422 {object} util.APIResponse "Invalid query"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /postgres/{entity} [get]
func (res Resource[T, P]) List(c *gin.Context) {
	page, ok := pagination(c, defaultListLimit)
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	rows, total, err := repository.ListRows[T](c.Request.Context(), repo, page)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to retrieve %s", res.Plural), err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: res.Name + " list retrieved",
		Data: map[string]interface{}{
			"total":    total,
			"skip":     page.Skip,
			"limit":    page.Limit,
			res.Plural: rows,
		},
	})
}

// Latest returns the rows with the highest primary keys.
func (res Resource[T, P]) Latest(c *gin.Context) {
	limit, ok := queryLimit(c, defaultLatestLimit)
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	rows, err := repository.LatestRows[T](c.Request.Context(), repo, limit)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to retrieve latest %s", res.Plural), err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Latest " + res.Plural + " retrieved",
		Data: map[string]interface{}{"limit": limit, "count": len(rows), res.Plural: rows},
	})
}

// ByPatient returns every row owned by the patient in the path.
func (res Resource[T, P]) ByPatient(c *gin.Context) {
	patientID, ok := pathID(c, "patient_id")
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	rows, err := repository.RowsByPatient[T](c.Request.Context(), repo, patientID)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to retrieve %s", res.Plural), err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  res.Name + " list retrieved",
		Data: map[string]interface{}{"PatientID": patientID, "total": len(rows), res.Plural: rows},
	})
}

// Get godoc
// @Summary      Get one row
// @Produce      json
// @Param        id path int true "Primary key"
// @Success      200 {object} util.APIResponse{data=object} "Row retrieved"
// @Failure      404 {object} util.APIResponse "Not found"
// @Failure      422 {object} util.APIResponse "Invalid id"
// @Router       /postgres/{entity}/{id} [get]
func (res Resource[T, P]) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	row, err := repository.GetRow[T](c.Request.Context(), repo, id)
	if err != nil {
		respondError(c, res.Name+" not found", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: res.Name + " retrieved", Data: row})
}

// checkOwner rejects rows pointing at a patient that does not exist.
func (res Resource[T, P]) checkOwner(c *gin.Context, repo *repository.Repository, patientID *int64, required bool) bool {
	if res.owner == nil {
		return true
	}
	if patientID == nil {
		if required {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "PatientID is required",
				Err: fmt.Errorf("missing PatientID"),
			})
			return false
		}
		return true
	}

	exists, err := repo.PatientExists(c.Request.Context(), *patientID)
	if err != nil {
		respondError(c, "Failed to check patient", err)
		return false
	}
	if !exists {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Patient %d does not exist", *patientID),
		})
		return false
	}
	return true
}

// Create godoc
// @Summary      Create a row
// @Accept       json
// @Produce      json
// @Success      201 {object} util.APIResponse{data=object} "Row created"
// @Failure      422 {object} util.APIResponse "Invalid body or unknown PatientID"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /postgres/{entity} [post]
func (res Resource[T, P]) Create(c *gin.Context) {
	var payload P
	if !bindJSON(c, &payload) {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}
	var owner *int64
	if res.owner != nil {
		owner = res.owner(payload)
	}
	if !res.checkOwner(c, repo, owner, true) {
		return
	}

	row := res.build(payload)
	if err := repository.CreateRow(c.Request.Context(), repo, &row); err != nil {
		respondError(c, fmt.Sprintf("Failed to create %s", res.Name), err)
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: res.Name + " created", Data: row})
}

// Update godoc
// @Summary      Update a row
// @Description  Only the fields present in the body change
// @Accept       json
// @Produce      json
// @Param        id path int true "Primary key"
// @Success      200 {object} util.APIResponse{data=object} "Row updated"
// @Failure      404 {object} util.APIResponse "Not found"
// @Failure      422 {object} util.APIResponse "Invalid body or unknown PatientID"
// @Router       /postgres/{entity}/{id} [put]
func (res Resource[T, P]) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload P
	if !bindJSON(c, &payload) {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}
	// A missing row is 404 even when the body also names an unknown patient.
	if _, err := repository.GetRow[T](c.Request.Context(), repo, id); err != nil {
		respondError(c, res.Name+" not found", err)
		return
	}
	var owner *int64
	if res.owner != nil {
		owner = res.owner(payload)
	}
	if !res.checkOwner(c, repo, owner, false) {
		return
	}

	row, err := repository.UpdateRow[T](c.Request.Context(), repo, id, res.fields(payload))
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to update %s", res.Name), err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: res.Name + " updated", Data: row})
}

// Delete godoc
// @Summary      Delete a row
// @Description  Deleting a patient also deletes its related rows
// @Produce      json
// @Param        id path int true "Primary key"
// @Success      200 {object} util.APIResponse "Row deleted"
// @Failure      404 {object} util.APIResponse "Not found"
// @Router       /postgres/{entity}/{id} [delete]
func (res Resource[T, P]) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	remove := res.remove
	if remove == nil {
		remove = repository.DeleteRow[T]
	}
	if err := remove(c.Request.Context(), repo, id); err != nil {
		respondError(c, fmt.Sprintf("Failed to delete %s", res.Name), err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  res.Name + " deleted",
		Data: map[string]interface{}{"id": id},
	})
}
