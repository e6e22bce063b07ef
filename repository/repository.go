// Package repository holds the relational queries that need more than a
// single ORM call, plus generic CRUD helpers shared by the five entities.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/util"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound wraps util.ErrNotFound for missing rows.
var ErrNotFound = fmt.Errorf("record %w", util.ErrNotFound)

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the handle bound to ctx.
func (r *Repository) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Transaction runs fn in a transaction that commits when fn returns nil and
// rolls back on an error or panic.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
	if err != nil {
		log.WithError(err).Debug("transaction rolled back")
	}
	return err
}

// Migrate creates or updates every table.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.DB(ctx).AutoMigrate(model.RelationalModels()...)
}

func byPrimaryKey(desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey},
		Desc:   desc,
	}
}

func byColumn(name string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: desc}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListRows pages through a table in primary key order and returns the table size.
func ListRows[T any](ctx context.Context, r *Repository, page util.Pagination) ([]T, int64, error) {
	rows := []T{}
	var total int64
	if err := r.DB(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB(ctx).Order(byPrimaryKey(false)).Offset(page.Skip).Limit(page.Limit).Find(&rows).Error
	return rows, total, err
}

// LatestRows returns the limit rows with the highest primary keys.
func LatestRows[T any](ctx context.Context, r *Repository, limit int) ([]T, error) {
	rows := []T{}
	err := r.DB(ctx).Order(byPrimaryKey(true)).Limit(limit).Find(&rows).Error
	return rows, err
}

// RowsByPatient returns every row of a child table owned by patientID.
func RowsByPatient[T any](ctx context.Context, r *Repository, patientID int64) ([]T, error) {
	rows := []T{}
	err := r.DB(ctx).Where(map[string]interface{}{"PatientID": patientID}).Order(byPrimaryKey(false)).Find(&rows).Error
	return rows, err
}

func GetRow[T any](ctx context.Context, r *Repository, id int64) (T, error) {
	var row T
	err := r.DB(ctx).First(&row, id).Error
	return row, notFound(err)
}

func CreateRow[T any](ctx context.Context, r *Repository, row *T) error {
	return r.DB(ctx).Create(row).Error
}

// UpdateRow applies fields (column name to value) to the row and returns it reloaded.
func UpdateRow[T any](ctx context.Context, r *Repository, id int64, fields map[string]interface{}) (T, error) {
	row, err := GetRow[T](ctx, r, id)
	if err != nil {
		return row, err
	}
	if len(fields) == 0 {
		return row, nil
	}
	if err := r.DB(ctx).Model(&row).Updates(fields).Error; err != nil {
		return row, err
	}
	return GetRow[T](ctx, r, id)
}

func DeleteRow[T any](ctx context.Context, r *Repository, id int64) error {
	res := r.DB(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) PatientExists(ctx context.Context, patientID int64) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&model.Patient{}).Where(map[string]interface{}{"PatientID": patientID}).Count(&n).Error
	return n > 0, err
}

// DeletePatient removes the patient and its child rows in one transaction.
// Prediction audit rows are kept.
func (r *Repository) DeletePatient(ctx context.Context, patientID int64) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if _, err := GetRow[model.Patient](ctx, tx, patientID); err != nil {
			return err
		}
		owned := map[string]interface{}{"PatientID": patientID}
		for _, child := range []interface{}{
			&model.HealthCondition{}, &model.LifestyleFactor{}, &model.HealthMetric{}, &model.HealthcareAccess{},
		} {
			if err := tx.DB(ctx).Where(owned).Delete(child).Error; err != nil {
				return err
			}
		}
		return DeleteRow[model.Patient](ctx, tx, patientID)
	})
}
