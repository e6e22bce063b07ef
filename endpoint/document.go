package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentResource serves one collection of the document backend. D is the
// stored document and P the request body of create and update.
type DocumentResource[D any, P any] struct {
	Name       string
	Plural     string
	Collection string

	fields func(P) map[string]interface{}
	// patientID reads the logical patient reference from the body.
	patientID func(P) *int64
	// sequence assigns the next counter value when the body has no PatientID.
	sequence bool
}

var (
	PatientDocuments = DocumentResource[model.PatientDocument, model.PatientPayload]{
		Name:       "Patient",
		Plural:     "patients",
		Collection: model.TablePatients,
		fields:     model.PatientPayload.Fields,
		patientID:  func(p model.PatientPayload) *int64 { return p.PatientID },
		sequence:   true,
	}
	HealthConditionDocuments = DocumentResource[model.HealthConditionDocument, model.HealthConditionPayload]{
		Name:       "Health condition",
		Plural:     "health_conditions",
		Collection: model.TableHealthConditions,
		fields:     model.HealthConditionPayload.Fields,
		patientID:  model.HealthConditionPayload.OwnerID,
	}
	LifestyleFactorDocuments = DocumentResource[model.LifestyleFactorDocument, model.LifestyleFactorPayload]{
		Name:       "Lifestyle factor",
		Plural:     "lifestyle_factors",
		Collection: model.TableLifestyleFactors,
		fields:     model.LifestyleFactorPayload.Fields,
		patientID:  model.LifestyleFactorPayload.OwnerID,
	}
	HealthMetricDocuments = DocumentResource[model.HealthMetricDocument, model.HealthMetricPayload]{
		Name:       "Health metric",
		Plural:     "health_metrics",
		Collection: model.TableHealthMetrics,
		fields:     model.HealthMetricPayload.Fields,
		patientID:  model.HealthMetricPayload.OwnerID,
	}
	HealthcareAccessDocuments = DocumentResource[model.HealthcareAccessDocument, model.HealthcareAccessPayload]{
		Name:       "Healthcare access",
		Plural:     "healthcare_access",
		Collection: model.TableHealthcareAccess,
		fields:     model.HealthcareAccessPayload.Fields,
		patientID:  model.HealthcareAccessPayload.OwnerID,
	}
)

// HasOwner reports whether documents belong to a patient, i.e. whether the
// by-patient route applies.
func (res DocumentResource[D, P]) HasOwner() bool {
	return !res.sequence
}

func documentNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (res DocumentResource[D, P]) findByID(ctx context.Context, store docstore.Store, id primitive.ObjectID) (D, error) {
	raw, err := store.FindOne(ctx, res.Collection, bson.M{"_id": id})
	if err != nil {
		var zero D
		return zero, err
	}
	return docstore.Decode[D](raw)
}

func (res DocumentResource[D, P]) objectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := docstore.ParseObjectID(c.Param("id"))
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid document id", Err: err})
		return id, false
	}
	return id, true
}

// List godoc
// @Summary      List documents
// @Description  Page through the collection in insertion order
// @Produce      json
// @Param        skip query int false "Documents to skip" default(0)
// @Param        limit query int false "Page size (1..1000)" default(100)
// @Success      200 {object} util.APIResponse{data=object} "Documents retrieved"
// @Failure      422 {object} util.APIResponse "Invalid query"
// @Router       /mongodb/{collection} [get]
func (res DocumentResource[D, P]) List(c *gin.Context) {
	page, ok := pagination(c, defaultListLimit)
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	total, err := store.Count(ctx, res.Collection, nil)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to count %s", res.Plural), err)
		return
	}
	raws, err := store.Find(ctx, res.Collection, nil, docstore.FindOptions{
		Skip:  int64(page.Skip),
		Limit: int64(page.Limit),
	})
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to retrieve %s", res.Plural), err)
		return
	}
	docs, err := docstore.DecodeAll[D](raws)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to decode %s", res.Plural), err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: res.Name + " list retrieved",
		Data: map[string]interface{}{
			"total":    total,
			"skip":     page.Skip,
			"limit":    page.Limit,
			res.Plural: docs,
		},
	})
}

// Latest returns the most recently updated documents.
func (res DocumentResource[D, P]) Latest(c *gin.Context) {
	limit, ok := queryLimit(c, defaultLatestLimit)
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}

	raws, err := store.Find(c.Request.Context(), res.Collection, nil, docstore.FindOptions{
		Limit:     int64(limit),
		SortField: "updated_at",
		SortDesc:  true,
	})
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to retrieve latest %s", res.Plural), err)
		return
	}
	docs, err := docstore.DecodeAll[D](raws)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to decode %s", res.Plural), err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Latest " + res.Plural + " retrieved",
		Data: map[string]interface{}{"limit": limit, "count": len(docs), res.Plural: docs},
	})
}

// ByPatient returns every document referencing the logical patient id in the path.
func (res DocumentResource[D, P]) ByPatient(c *gin.Context) {
	patientID, ok := pathID(c, "patient_id")
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}

	raws, err := store.Find(c.Request.Context(), res.Collection, bson.M{"PatientID": patientID}, docstore.FindOptions{})
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to retrieve %s", res.Plural), err)
		return
	}
	docs, err := docstore.DecodeAll[D](raws)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to decode %s", res.Plural), err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  res.Name + " list retrieved",
		Data: map[string]interface{}{"PatientID": patientID, "total": len(docs), res.Plural: docs},
	})
}

// ByPatientID godoc
// @Summary      Get a patient by its logical id
// @Produce      json
// @Param        patient_id path int true "PatientID"
// @Success      200 {object} util.APIResponse{data=model.PatientDocument} "Patient retrieved"
// @Failure      404 {object} util.APIResponse "Not found"
// @Router       /mongodb/patients/by-patient-id/{patient_id} [get]
func (res DocumentResource[D, P]) ByPatientID(c *gin.Context) {
	patientID, ok := pathID(c, "patient_id")
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}

	raw, err := store.FindOne(c.Request.Context(), res.Collection, bson.M{"PatientID": patientID})
	if err != nil {
		respondError(c, res.Name+" not found", err)
		return
	}
	doc, err := docstore.Decode[D](raw)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to decode %s", res.Name), err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: res.Name + " retrieved", Data: doc})
}

// Get godoc
// @Summary      Get one document
// @Produce      json
// @Param        id path string true "ObjectId"
// @Success      200 {object} util.APIResponse{data=object} "Document retrieved"
// @Failure      404 {object} util.APIResponse "Not found"
// @Failure      422 {object} util.APIResponse "Malformed ObjectId"
// @Router       /mongodb/{collection}/{id} [get]
func (res DocumentResource[D, P]) Get(c *gin.Context) {
	id, ok := res.objectID(c)
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}

	doc, err := res.findByID(c.Request.Context(), store, id)
	if err != nil {
		respondError(c, res.Name+" not found", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: res.Name + " retrieved", Data: doc})
}

// nextPatientID draws counter values until one is not taken by an existing document.
func nextPatientID(ctx context.Context, store docstore.Store, coll string) (int64, error) {
	for {
		id, err := store.NextSequence(ctx, "PatientID")
		if err != nil {
			return 0, err
		}
		n, err := store.Count(ctx, coll, bson.M{"PatientID": id})
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return id, nil
		}
	}
}

// Create godoc
// @Summary      Create a document
// @Description  Sets created_at and updated_at. Patients without PatientID get the next sequence value
// @Accept       json
// @Produce      json
// @Success      201 {object} util.APIResponse{data=object} "Document created"
// @Failure      422 {object} util.APIResponse "Invalid body or missing PatientID"
// @Router       /mongodb/{collection} [post]
func (res DocumentResource[D, P]) Create(c *gin.Context) {
	var payload P
	if !bindJSON(c, &payload) {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	doc := bson.M{}
	for k, v := range res.fields(payload) {
		doc[k] = v
	}
	patientID := res.patientID(payload)
	switch {
	case patientID != nil:
		doc["PatientID"] = *patientID
	case res.sequence:
		next, err := nextPatientID(ctx, store, res.Collection)
		if err != nil {
			respondError(c, "Failed to assign PatientID", err)
			return
		}
		doc["PatientID"] = next
	default:
		util.CallUserError(c, util.APIErrorParams{
			Msg: "PatientID is required",
			Err: fmt.Errorf("missing PatientID"),
		})
		return
	}
	now := documentNow()
	doc["created_at"] = now
	doc["updated_at"] = now

	id, err := store.InsertOne(ctx, res.Collection, doc)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to create %s", res.Name), err)
		return
	}
	stored, err := res.findByID(ctx, store, id)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to reload %s", res.Name), err)
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: res.Name + " created", Data: stored})
}

// Update godoc
// @Summary      Update a document
// @Description  Sets the supplied fields and updated_at
// @Accept       json
// @Produce      json
// @Param        id path string true "ObjectId"
// @Success      200 {object} util.APIResponse{data=object} "Document updated"
// @Failure      404 {object} util.APIResponse "Not found"
// @Failure      422 {object} util.APIResponse "Invalid body or ObjectId"
// @Router       /mongodb/{collection}/{id} [put]
func (res DocumentResource[D, P]) Update(c *gin.Context) {
	id, ok := res.objectID(c)
	if !ok {
		return
	}
	var payload P
	if !bindJSON(c, &payload) {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	set := bson.M{}
	for k, v := range res.fields(payload) {
		set[k] = v
	}
	set["updated_at"] = documentNow()

	matched, err := store.UpdateByID(ctx, res.Collection, id, set)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to update %s", res.Name), err)
		return
	}
	if !matched {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: res.Name + " not found"})
		return
	}
	stored, err := res.findByID(ctx, store, id)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to reload %s", res.Name), err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: res.Name + " updated", Data: stored})
}

// Delete godoc
// @Summary      Delete a document
// @Produce      json
// @Param        id path string true "ObjectId"
// @Success      200 {object} util.APIResponse "Document deleted"
// @Failure      404 {object} util.APIResponse "Not found"
// @Router       /mongodb/{collection}/{id} [delete]
func (res DocumentResource[D, P]) Delete(c *gin.Context) {
	id, ok := res.objectID(c)
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}

	deleted, err := store.DeleteByID(c.Request.Context(), res.Collection, id)
	if err != nil {
		respondError(c, fmt.Sprintf("Failed to delete %s", res.Name), err)
		return
	}
	if !deleted {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: res.Name + " not found"})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  res.Name + " deleted",
		Data: map[string]interface{}{"id": id.Hex()},
	})
}
