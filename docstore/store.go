// Package docstore is the document backend. Store is implemented by Mongo
// for deployments and by Memory for tests and local runs without MONGO_URI.
package docstore

import (
	"context"
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/util"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = fmt.Errorf("document %w", util.ErrNotFound)

// Collections holding the five entities, in patient-first order.
var Collections = []string{
	model.TablePatients,
	model.TableHealthConditions,
	model.TableLifestyleFactors,
	model.TableHealthMetrics,
	model.TableHealthcareAccess,
}

// FindOptions controls paging and ordering of Find. A zero Limit means no limit.
// Without SortField documents come back in _id (insertion) order.
type FindOptions struct {
	Skip      int64
	Limit     int64
	SortField string
	SortDesc  bool
}

type Store interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context, coll string, filter bson.M) (int64, error)
	Find(ctx context.Context, coll string, filter bson.M, opts FindOptions) ([]bson.M, error)
	FindOne(ctx context.Context, coll string, filter bson.M) (bson.M, error)
	InsertOne(ctx context.Context, coll string, doc interface{}) (primitive.ObjectID, error)
	// UpdateByID applies $set and reports whether a document matched.
	UpdateByID(ctx context.Context, coll string, id primitive.ObjectID, set bson.M) (bool, error)
	DeleteByID(ctx context.Context, coll string, id primitive.ObjectID) (bool, error)
	// NextSequence atomically increments and returns the named counter.
	NextSequence(ctx context.Context, name string) (int64, error)
	// FirstByPatient returns the oldest document of coll for each of the given PatientIDs.
	FirstByPatient(ctx context.Context, coll string, patientIDs []int64) (map[int64]bson.M, error)
	// CompleteRecords pages through patients (newest update first) that have at
	// least one document in every child collection. The total counts all of them.
	CompleteRecords(ctx context.Context, skip, limit int64) ([]model.DocumentTrainingRecord, int64, error)
}

// Connect returns the configured document store: MongoDB when MONGO_URI is set,
// otherwise an in-memory store outside production.
func Connect(ctx context.Context) (Store, error) {
	cfg := config.LoadConfig()
	if cfg.MongoURI == "" {
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("MONGO_URI must be provided in production")
		}
		log.Warn("MONGO_URI not set, using the in-memory document store")
		return NewMemory(), nil
	}

	db, err := config.ConnectMongo(ctx)
	if err != nil {
		return nil, err
	}
	return NewMongo(db), nil
}

// Decode converts a raw document into T through a BSON round trip.
func Decode[T any](raw bson.M) (T, error) {
	var out T
	data, err := bson.Marshal(raw)
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(data, &out)
	return out, err
}

// DecodeAll decodes every raw document, stopping at the first failure.
func DecodeAll[T any](raws []bson.M) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := Decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseObjectID converts a hex id from a request path.
func ParseObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid ObjectId", util.ErrInvalidInput, hex)
	}
	return id, nil
}
