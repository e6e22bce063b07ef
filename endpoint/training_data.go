package endpoint

import (
	"context"

	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
)

// LatestTrainingData godoc
// @Summary      Latest training records
// @Description  Newest patients joined with their first row of each related table. Missing relations are null
// @Produce      json
// @Param        limit query int false "Number of patients (1..1000)" default(100)
// @Success      200 {object} util.APIResponse{data=object} "Training data retrieved"
// @Failure      422 {object} util.APIResponse "Invalid query"
// @Router       /postgres/training-data/latest [get]
func LatestTrainingData(c *gin.Context) {
	limit, ok := queryLimit(c, defaultTrainingLimit)
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	records, err := repo.LatestTrainingRecords(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "Failed to retrieve training data", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Training data retrieved",
		Data: map[string]interface{}{"total": len(records), "limit": limit, "records": records},
	})
}

// CompleteTrainingData godoc
// @Summary      Complete training records
// @Description  Patients with at least one row in every related table, newest first
// @Produce      json
// @Param        skip query int false "Records to skip" default(0)
// @Param        limit query int false "Page size (1..1000)" default(1000)
// @Success      200 {object} util.APIResponse{data=object} "Training data retrieved"
// @Failure      422 {object} util.APIResponse "Invalid query"
// @Router       /postgres/training-data/complete [get]
func CompleteTrainingData(c *gin.Context) {
	page, ok := pagination(c, defaultCompleteLimit)
	if !ok {
		return
	}
	repo, ok := repositoryFrom(c)
	if !ok {
		return
	}

	records, total, err := repo.CompleteTrainingRecords(c.Request.Context(), page.Skip, page.Limit)
	if err != nil {
		respondError(c, "Failed to retrieve training data", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Complete training data retrieved",
		Data: map[string]interface{}{
			"total":    total,
			"skip":     page.Skip,
			"limit":    page.Limit,
			"returned": len(records),
			"records":  records,
		},
	})
}

// firstDocuments decodes the oldest document of coll for every patient id.
func firstDocuments[D any](ctx context.Context, store docstore.Store, coll string, ids []int64) (map[int64]*D, error) {
	raws, err := store.FirstByPatient(ctx, coll, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*D, len(raws))
	for id, raw := range raws {
		doc, err := docstore.Decode[D](raw)
		if err != nil {
			return nil, err
		}
		out[id] = &doc
	}
	return out, nil
}

// LatestDocumentTrainingData godoc
// @Summary      Latest training records from the document store
// @Description  Most recently updated patients flattened with their first document of each related collection
// @Produce      json
// @Param        limit query int false "Number of patients (1..1000)" default(100)
// @Success      200 {object} util.APIResponse{data=object} "Training data retrieved"
// @Router       /mongodb/training-data/latest [get]
func LatestDocumentTrainingData(c *gin.Context) {
	limit, ok := queryLimit(c, defaultTrainingLimit)
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	raws, err := store.Find(ctx, model.TablePatients, nil, docstore.FindOptions{
		Limit:     int64(limit),
		SortField: "updated_at",
		SortDesc:  true,
	})
	if err != nil {
		respondError(c, "Failed to retrieve patients", err)
		return
	}
	patients, err := docstore.DecodeAll[model.PatientDocument](raws)
	if err != nil {
		respondError(c, "Failed to decode patients", err)
		return
	}
	ids := lo.Map(patients, func(p model.PatientDocument, _ int) int64 { return p.PatientID })

	conditions, err := firstDocuments[model.HealthConditionDocument](ctx, store, model.TableHealthConditions, ids)
	if err != nil {
		respondError(c, "Failed to retrieve health conditions", err)
		return
	}
	lifestyle, err := firstDocuments[model.LifestyleFactorDocument](ctx, store, model.TableLifestyleFactors, ids)
	if err != nil {
		respondError(c, "Failed to retrieve lifestyle factors", err)
		return
	}
	metrics, err := firstDocuments[model.HealthMetricDocument](ctx, store, model.TableHealthMetrics, ids)
	if err != nil {
		respondError(c, "Failed to retrieve health metrics", err)
		return
	}
	access, err := firstDocuments[model.HealthcareAccessDocument](ctx, store, model.TableHealthcareAccess, ids)
	if err != nil {
		respondError(c, "Failed to retrieve healthcare access", err)
		return
	}

	records := lo.Map(patients, func(p model.PatientDocument, _ int) model.DocumentTrainingRecord {
		return model.NewDocumentTrainingRecord(p, conditions[p.PatientID], lifestyle[p.PatientID], metrics[p.PatientID], access[p.PatientID])
	})
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Training data retrieved",
		Data: map[string]interface{}{"total": len(records), "limit": limit, "records": records},
	})
}

// CompleteDocumentTrainingData pages through patients present in all four
// related collections. Completeness is decided before paging.
func CompleteDocumentTrainingData(c *gin.Context) {
	page, ok := pagination(c, defaultCompleteLimit)
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}

	records, total, err := store.CompleteRecords(c.Request.Context(), int64(page.Skip), int64(page.Limit))
	if err != nil {
		respondError(c, "Failed to retrieve training data", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Complete training data retrieved",
		Data: map[string]interface{}{
			"total":    total,
			"skip":     page.Skip,
			"limit":    page.Limit,
			"returned": len(records),
			"records":  records,
		},
	})
}

var latestCollections = []struct {
	key  string
	coll string
}{
	{"latest_patients", model.TablePatients},
	{"latest_health_conditions", model.TableHealthConditions},
	{"latest_lifestyle_factors", model.TableLifestyleFactors},
	{"latest_health_metrics", model.TableHealthMetrics},
	{"latest_healthcare_access", model.TableHealthcareAccess},
}

// AllLatestDocuments godoc
// @Summary      Newest documents of every collection
// @Produce      json
// @Param        limit query int false "Documents per collection (1..1000)" default(5)
// @Success      200 {object} util.APIResponse{data=object} "Documents retrieved"
// @Router       /mongodb/all/latest [get]
func AllLatestDocuments(c *gin.Context) {
	limit, ok := queryLimit(c, 5)
	if !ok {
		return
	}
	store, ok := documentStoreFrom(c)
	if !ok {
		return
	}

	data := map[string]interface{}{"limit_per_collection": limit}
	for _, lc := range latestCollections {
		docs, err := store.Find(c.Request.Context(), lc.coll, nil, docstore.FindOptions{
			Limit:     int64(limit),
			SortField: "updated_at",
			SortDesc:  true,
		})
		if err != nil {
			respondError(c, "Failed to retrieve latest documents", err)
			return
		}
		if docs == nil {
			docs = []bson.M{}
		}
		data[lc.key] = docs
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Latest documents retrieved", Data: data})
}
