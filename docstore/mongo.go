package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const countersCollection = "counters"

// Mongo is the MongoDB backed Store.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}

func (m *Mongo) Count(ctx context.Context, coll string, filter bson.M) (int64, error) {
	return m.db.Collection(coll).CountDocuments(ctx, orEmpty(filter))
}

func (m *Mongo) Find(ctx context.Context, coll string, filter bson.M, opts FindOptions) ([]bson.M, error) {
	findOpts := options.Find().SetSkip(opts.Skip).SetSort(sortSpec(opts))
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := m.db.Collection(coll).Find(ctx, orEmpty(filter), findOpts)
	if err != nil {
		return nil, err
	}
	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *Mongo) FindOne(ctx context.Context, coll string, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := m.db.Collection(coll).FindOne(ctx, orEmpty(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return doc, err
}

func (m *Mongo) InsertOne(ctx context.Context, coll string, doc interface{}) (primitive.ObjectID, error) {
	res, err := m.db.Collection(coll).InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (m *Mongo) UpdateByID(ctx context.Context, coll string, id primitive.ObjectID, set bson.M) (bool, error) {
	res, err := m.db.Collection(coll).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (m *Mongo) DeleteByID(ctx context.Context, coll string, id primitive.ObjectID) (bool, error) {
	res, err := m.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *Mongo) NextSequence(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.db.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return counter.Seq, nil
}

func (m *Mongo) FirstByPatient(ctx context.Context, coll string, patientIDs []int64) (map[int64]bson.M, error) {
	out := make(map[int64]bson.M, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"PatientID": bson.M{"$in": patientIDs}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$PatientID", "doc": bson.M{"$first": "$$ROOT"}}}},
	}
	cursor, err := m.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		PatientID int64  `bson:"_id"`
		Doc       bson.M `bson:"doc"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PatientID] = row.Doc
	}
	return out, nil
}

// completeRow is one patient with the looked up children.
type completeRow struct {
	model.PatientDocument `bson:",inline"`
	Conditions            []model.HealthConditionDocument  `bson:"health_conditions"`
	Lifestyle             []model.LifestyleFactorDocument  `bson:"lifestyle_factors"`
	Metrics               []model.HealthMetricDocument     `bson:"health_metrics"`
	Access                []model.HealthcareAccessDocument `bson:"healthcare_access"`
}

func lookupStage(from, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   "PatientID",
		"foreignField": "PatientID",
		"as":           as,
	}}}
}

func (m *Mongo) CompleteRecords(ctx context.Context, skip, limit int64) ([]model.DocumentTrainingRecord, int64, error) {
	countPipeline := completePipeline(bson.D{{Key: "$count", Value: "total"}})
	cursor, err := m.db.Collection(model.TablePatients).Aggregate(ctx, countPipeline)
	if err != nil {
		return nil, 0, err
	}
	var counts []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, 0, err
	}
	var total int64
	if len(counts) > 0 {
		total = counts[0].Total
	}

	pagePipeline := completePipeline(
		bson.D{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	)
	cursor, err = m.db.Collection(model.TablePatients).Aggregate(ctx, pagePipeline)
	if err != nil {
		return nil, 0, err
	}
	var rows []completeRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, err
	}

	// Rows missing a child are skipped rather than indexed.
	records := lo.FilterMap(rows, func(row completeRow, _ int) (model.DocumentTrainingRecord, bool) {
		hc, lf, hm, ha := firstOf(row.Conditions), firstOf(row.Lifestyle), firstOf(row.Metrics), firstOf(row.Access)
		if hc == nil || lf == nil || hm == nil || ha == nil {
			return model.DocumentTrainingRecord{}, false
		}
		return model.NewDocumentTrainingRecord(row.PatientDocument, hc, lf, hm, ha), true
	})
	return records, total, nil
}

func firstOf[T any](docs []T) *T {
	if len(docs) == 0 {
		return nil
	}
	return &docs[0]
}

// completePipeline joins the child collections and keeps patients that have
// all of them. The completeness match runs before any stage in tail, so paging
// never yields short pages.
func completePipeline(tail ...bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		lookupStage(model.TableHealthConditions, "health_conditions"),
		lookupStage(model.TableLifestyleFactors, "lifestyle_factors"),
		lookupStage(model.TableHealthMetrics, "health_metrics"),
		lookupStage(model.TableHealthcareAccess, "healthcare_access"),
		{{Key: "$match", Value: bson.M{
			"health_conditions": bson.M{"$ne": bson.A{}},
			"lifestyle_factors": bson.M{"$ne": bson.A{}},
			"health_metrics":    bson.M{"$ne": bson.A{}},
			"healthcare_access": bson.M{"$ne": bson.A{}},
		}}},
	}
	return append(pipeline, tail...)
}

func sortSpec(opts FindOptions) bson.D {
	if opts.SortField == "" {
		return bson.D{{Key: "_id", Value: 1}}
	}
	dir := 1
	if opts.SortDesc {
		dir = -1
	}
	return bson.D{{Key: opts.SortField, Value: dir}, {Key: "_id", Value: dir}}
}

func orEmpty(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}
