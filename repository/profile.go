package repository

import (
	"context"
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/samber/lo"
)

// completeCondition keeps patients with at least one row in every child table.
const completeCondition = `EXISTS (SELECT 1 FROM "Health_Conditions" c WHERE c."PatientID" = "Patients"."PatientID")
	AND EXISTS (SELECT 1 FROM "Lifestyle_Factors" l WHERE l."PatientID" = "Patients"."PatientID")
	AND EXISTS (SELECT 1 FROM "Health_Metrics" m WHERE m."PatientID" = "Patients"."PatientID")
	AND EXISTS (SELECT 1 FROM "Healthcare_Access" a WHERE a."PatientID" = "Patients"."PatientID")`

func (r *Repository) isPostgres() bool {
	return r.db.Dialector.Name() == "postgres"
}

// LatestTrainingRecords flattens the newest patients with their first row of
// each child table. Missing relations leave nil fields.
func (r *Repository) LatestTrainingRecords(ctx context.Context, limit int) ([]model.PatientProfile, error) {
	var patients []model.Patient
	if err := r.DB(ctx).Order(byPrimaryKey(true)).Limit(limit).Find(&patients).Error; err != nil {
		return nil, err
	}
	return r.attachChildren(ctx, patients)
}

// CompleteTrainingRecords pages through patients that have every relation, newest first.
// The returned total counts all complete patients.
func (r *Repository) CompleteTrainingRecords(ctx context.Context, skip, limit int) ([]model.PatientProfile, int64, error) {
	var total int64
	if err := r.DB(ctx).Model(&model.Patient{}).Where(completeCondition).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []model.Patient
	err := r.DB(ctx).Where(completeCondition).Order(byPrimaryKey(true)).Offset(skip).Limit(limit).Find(&patients).Error
	if err != nil {
		return nil, 0, err
	}
	records, err := r.attachChildren(ctx, patients)
	return records, total, err
}

// attachChildren loads the first child row of each kind for all patients with one query per table.
func (r *Repository) attachChildren(ctx context.Context, patients []model.Patient) ([]model.PatientProfile, error) {
	ids := lo.Map(patients, func(p model.Patient, _ int) int64 { return p.PatientID })
	if len(ids) == 0 {
		return []model.PatientProfile{}, nil
	}

	conditions, err := firstByPatient(ctx, r, ids, func(row model.HealthCondition) int64 { return row.PatientID })
	if err != nil {
		return nil, err
	}
	lifestyle, err := firstByPatient(ctx, r, ids, func(row model.LifestyleFactor) int64 { return row.PatientID })
	if err != nil {
		return nil, err
	}
	metrics, err := firstByPatient(ctx, r, ids, func(row model.HealthMetric) int64 { return row.PatientID })
	if err != nil {
		return nil, err
	}
	access, err := firstByPatient(ctx, r, ids, func(row model.HealthcareAccess) int64 { return row.PatientID })
	if err != nil {
		return nil, err
	}

	return lo.Map(patients, func(p model.Patient, _ int) model.PatientProfile {
		return model.NewPatientProfile(p, conditions[p.PatientID], lifestyle[p.PatientID], metrics[p.PatientID], access[p.PatientID])
	}), nil
}

func firstByPatient[T any](ctx context.Context, r *Repository, ids []int64, owner func(T) int64) (map[int64]*T, error) {
	var rows []T
	err := r.DB(ctx).Where(map[string]interface{}{"PatientID": ids}).Order(byPrimaryKey(false)).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*T, len(ids))
	for i := range rows {
		id := owner(rows[i])
		if _, seen := out[id]; !seen {
			out[id] = &rows[i]
		}
	}
	return out, nil
}

// PatientProfile returns the joined profile of one patient. On PostgreSQL it
// reads the GetPatientProfile function; result columns are matched by name.
func (r *Repository) PatientProfile(ctx context.Context, patientID int64) (model.PatientProfile, error) {
	if r.isPostgres() {
		var profiles []model.PatientProfile
		if err := r.DB(ctx).Raw(`SELECT * FROM GetPatientProfile(?)`, patientID).Scan(&profiles).Error; err != nil {
			return model.PatientProfile{}, err
		}
		if len(profiles) == 0 {
			return model.PatientProfile{}, fmt.Errorf("patient %d: %w", patientID, ErrNotFound)
		}
		return profiles[0], nil
	}

	patient, err := GetRow[model.Patient](ctx, r, patientID)
	if err != nil {
		return model.PatientProfile{}, fmt.Errorf("patient %d: %w", patientID, err)
	}
	profiles, err := r.attachChildren(ctx, []model.Patient{patient})
	if err != nil {
		return model.PatientProfile{}, err
	}
	return profiles[0], nil
}

// CompletePatientRecords pages through complete profiles, newest patient first.
// On PostgreSQL it reads the GetCompletePatientRecords function.
func (r *Repository) CompletePatientRecords(ctx context.Context, skip, limit int) ([]model.PatientProfile, error) {
	if r.isPostgres() {
		profiles := []model.PatientProfile{}
		err := r.DB(ctx).Raw(`SELECT * FROM GetCompletePatientRecords(?, ?)`, skip, limit).Scan(&profiles).Error
		return profiles, err
	}
	profiles, _, err := r.CompleteTrainingRecords(ctx, skip, limit)
	return profiles, err
}

// LatestCompleteProfile returns the newest patient that has every relation.
func (r *Repository) LatestCompleteProfile(ctx context.Context) (model.PatientProfile, error) {
	profiles, err := r.CompletePatientRecords(ctx, 0, 1)
	if err != nil {
		return model.PatientProfile{}, err
	}
	if len(profiles) == 0 {
		return model.PatientProfile{}, fmt.Errorf("no complete patient record: %w", ErrNotFound)
	}
	return profiles[0], nil
}

// profileColumns is shared by both database functions. Casts pin the result
// types independently of how the columns were migrated.
const profileColumns = `
	p."PatientID"::bigint, p."Sex", p."Age"::bigint, p."Education"::bigint, p."Income"::bigint,
	hc."Diabetes_012"::bigint, hc."HighBP", hc."HighChol", hc."Stroke", hc."HeartDiseaseorAttack", hc."DiffWalk",
	lf."BMI"::double precision, lf."Smoker", lf."PhysActivity", lf."Fruits", lf."Veggies", lf."HvyAlcoholConsump",
	hm."CholCheck", hm."GenHlth"::bigint, hm."MentHlth"::bigint, hm."PhysHlth"::bigint,
	ha."AnyHealthcare", ha."NoDocbcCost"`

const profileTable = `TABLE (
	"PatientID" bigint, "Sex" boolean, "Age" bigint, "Education" bigint, "Income" bigint,
	"Diabetes_012" bigint, "HighBP" boolean, "HighChol" boolean, "Stroke" boolean, "HeartDiseaseorAttack" boolean, "DiffWalk" boolean,
	"BMI" double precision, "Smoker" boolean, "PhysActivity" boolean, "Fruits" boolean, "Veggies" boolean, "HvyAlcoholConsump" boolean,
	"CholCheck" boolean, "GenHlth" bigint, "MentHlth" bigint, "PhysHlth" bigint,
	"AnyHealthcare" boolean, "NoDocbcCost" boolean)`

// profileJoins selects the first row of each child table; join is LEFT or INNER.
func profileJoins(join string) string {
	return fmt.Sprintf(`
	FROM "Patients" p
	%[1]s JOIN LATERAL (SELECT * FROM "Health_Conditions" x WHERE x."PatientID" = p."PatientID" ORDER BY x."ConditionID" LIMIT 1) hc ON true
	%[1]s JOIN LATERAL (SELECT * FROM "Lifestyle_Factors" x WHERE x."PatientID" = p."PatientID" ORDER BY x."LifestyleID" LIMIT 1) lf ON true
	%[1]s JOIN LATERAL (SELECT * FROM "Health_Metrics" x WHERE x."PatientID" = p."PatientID" ORDER BY x."MetricsID" LIMIT 1) hm ON true
	%[1]s JOIN LATERAL (SELECT * FROM "Healthcare_Access" x WHERE x."PatientID" = p."PatientID" ORDER BY x."AccessID" LIMIT 1) ha ON true`, join)
}

// InstallProfileFunctions creates (or replaces) GetPatientProfile and
// GetCompletePatientRecords. It is a no-op on other dialects.
func (r *Repository) InstallProfileFunctions(ctx context.Context) error {
	if !r.isPostgres() {
		return nil
	}
	statements := []string{
		`CREATE OR REPLACE FUNCTION GetPatientProfile(p_patient_id bigint)
	RETURNS ` + profileTable + `
	LANGUAGE sql STABLE AS $$
	SELECT` + profileColumns + profileJoins("LEFT") + `
	WHERE p."PatientID" = p_patient_id
	$$`,
		`CREATE OR REPLACE FUNCTION GetCompletePatientRecords(p_skip integer, p_limit integer)
	RETURNS ` + profileTable + `
	LANGUAGE sql STABLE AS $$
	SELECT` + profileColumns + profileJoins("INNER") + `
	ORDER BY p."PatientID" DESC
	OFFSET p_skip LIMIT p_limit
	$$`,
	}
	return r.Transaction(ctx, func(tx *Repository) error {
		for _, stmt := range statements {
			if err := tx.DB(ctx).Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
