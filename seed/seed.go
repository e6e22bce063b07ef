// Package seed fills both backends with synthetic patients shaped like the
// BRFSS diabetes health indicators survey.
package seed

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/repository"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Record is one generated patient with a row of every related entity.
type Record struct {
	Patient          model.PatientPayload
	HealthCondition  model.HealthConditionPayload
	LifestyleFactor  model.LifestyleFactorPayload
	HealthMetric     model.HealthMetricPayload
	HealthcareAccess model.HealthcareAccessPayload
}

type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator returns a generator; equal seeds produce equal records.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

func ptr[T any](v T) *T { return &v }

func (g *Generator) flag() *bool {
	return ptr(g.faker.Bool())
}

func (g *Generator) intIn(lower, upper int) *int {
	return ptr(g.faker.IntRange(lower, upper))
}

// Record draws one patient. Age, Education and Income use the survey's
// category codes, not raw values.
func (g *Generator) Record() Record {
	bmi := math.Round(g.faker.Float64Range(16, 48)*10) / 10
	return Record{
		Patient: model.PatientPayload{
			Sex:       g.flag(),
			Age:       g.intIn(1, 13),
			Education: g.intIn(1, 6),
			Income:    g.intIn(1, 8),
		},
		HealthCondition: model.HealthConditionPayload{
			Diabetes012:          g.intIn(0, 2),
			HighBP:               g.flag(),
			HighChol:             g.flag(),
			Stroke:               ptr(g.faker.Number(1, 20) == 1),
			HeartDiseaseorAttack: ptr(g.faker.Number(1, 10) == 1),
			DiffWalk:             g.flag(),
		},
		LifestyleFactor: model.LifestyleFactorPayload{
			BMI:               &bmi,
			Smoker:            g.flag(),
			PhysActivity:      g.flag(),
			Fruits:            g.flag(),
			Veggies:           g.flag(),
			HvyAlcoholConsump: ptr(g.faker.Number(1, 15) == 1),
		},
		HealthMetric: model.HealthMetricPayload{
			CholCheck: g.flag(),
			GenHlth:   g.intIn(1, 5),
			MentHlth:  g.intIn(0, 30),
			PhysHlth:  g.intIn(0, 30),
		},
		HealthcareAccess: model.HealthcareAccessPayload{
			AnyHealthcare: g.flag(),
			NoDocbcCost:   ptr(g.faker.Number(1, 10) == 1),
		},
	}
}

func (g *Generator) Records(n int) []Record {
	return lo.Times(n, func(_ int) Record { return g.Record() })
}

// Relational inserts the records in one transaction and returns the new PatientIDs.
func Relational(ctx context.Context, repo *repository.Repository, records []Record) ([]int64, error) {
	ids := make([]int64, 0, len(records))
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, rec := range records {
			patient := rec.Patient.Patient()
			if err := repository.CreateRow(ctx, tx, &patient); err != nil {
				return fmt.Errorf("insert patient: %w", err)
			}
			id := patient.PatientID
			rec.HealthCondition.PatientID = &id
			rec.LifestyleFactor.PatientID = &id
			rec.HealthMetric.PatientID = &id
			rec.HealthcareAccess.PatientID = &id

			condition := rec.HealthCondition.HealthCondition()
			lifestyle := rec.LifestyleFactor.LifestyleFactor()
			metric := rec.HealthMetric.HealthMetric()
			access := rec.HealthcareAccess.HealthcareAccess()
			for _, row := range []interface{}{&condition, &lifestyle, &metric, &access} {
				if err := tx.DB(ctx).Create(row).Error; err != nil {
					return fmt.Errorf("insert related rows of patient %d: %w", id, err)
				}
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithField("patients", len(ids)).Info("seeded relational database")
	return ids, nil
}

func nextPatientID(ctx context.Context, store docstore.Store) (int64, error) {
	for {
		id, err := store.NextSequence(ctx, "PatientID")
		if err != nil {
			return 0, err
		}
		n, err := store.Count(ctx, model.TablePatients, bson.M{"PatientID": id})
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return id, nil
		}
	}
}

func document(fields map[string]interface{}, patientID int64, now time.Time) bson.M {
	doc := bson.M{"PatientID": patientID, "created_at": now, "updated_at": now}
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

// Documents stores the records in the document store, assigning PatientIDs
// from the counter sequence, and returns them.
func Documents(ctx context.Context, store docstore.Store, records []Record) ([]int64, error) {
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		id, err := nextPatientID(ctx, store)
		if err != nil {
			return ids, fmt.Errorf("assign PatientID: %w", err)
		}
		now := time.Now().UTC().Truncate(time.Millisecond)

		docs := []struct {
			coll   string
			fields map[string]interface{}
		}{
			{model.TablePatients, rec.Patient.Fields()},
			{model.TableHealthConditions, rec.HealthCondition.Fields()},
			{model.TableLifestyleFactors, rec.LifestyleFactor.Fields()},
			{model.TableHealthMetrics, rec.HealthMetric.Fields()},
			{model.TableHealthcareAccess, rec.HealthcareAccess.Fields()},
		}
		for _, d := range docs {
			if _, err := store.InsertOne(ctx, d.coll, document(d.fields, id, now)); err != nil {
				return ids, fmt.Errorf("insert into %s: %w", d.coll, err)
			}
		}
		ids = append(ids, id)
	}
	log.WithField("patients", len(ids)).Info("seeded document store")
	return ids, nil
}

// ValidationLogs writes n rejected BMI readings spread over the last days days.
func (g *Generator) ValidationLogs(ctx context.Context, repo *repository.Repository, patientIDs []int64, n, days int) error {
	if len(patientIDs) == 0 || n == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := lo.Times(n, func(_ int) model.ValidationLog {
		pid := patientIDs[g.faker.Number(0, len(patientIDs)-1)]
		return model.ValidationLog{
			SourceTable:    model.TableLifestyleFactors,
			PatientID:      &pid,
			ColumnName:     "BMI",
			Value:          fmt.Sprintf("%.1f", g.faker.Float64Range(100, 400)),
			ValidationRule: "BMI BETWEEN 10 AND 100",
			ErrorMessage:   "BMI out of range",
			ValidatedAt:    now.Add(-time.Duration(g.faker.Number(0, days*24)) * time.Hour),
			ValidatedBy:    "seed",
		}
	})
	return repo.DB(ctx).Create(&rows).Error
}
