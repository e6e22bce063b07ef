package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/model"
	"github.com/ariebrainware/ml-pipeline-api/repository"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// ErrModelUnavailable is returned when the model artifacts cannot be loaded.
var ErrModelUnavailable = fmt.Errorf("model %w", util.ErrUpstreamUnavailable)

// MaxBatchSize bounds the number of patient ids in one batch request.
const MaxBatchSize = 100

// Classifier is a loaded network with its optional scaler.
type Classifier struct {
	Network *Network
	Scaler  *Scaler
	Version string
}

// Score scales the features when a scaler is present and runs the network.
func (c *Classifier) Score(features []float64) (float64, error) {
	if c.Scaler != nil {
		features = c.Scaler.Transform(features)
	}
	return c.Network.Forward(features)
}

type Options struct {
	ModelFile  string
	ScalerFile string
	// Version overrides the version recorded in the model artifact.
	Version string
}

// Service runs predictions against the relational store and writes audit rows.
type Service struct {
	repo   *repository.Repository
	source ArtifactSource
	opts   Options
	now    func() time.Time

	mu         sync.Mutex
	classifier *Classifier
}

func NewService(repo *repository.Repository, source ArtifactSource, opts Options) *Service {
	return &Service{repo: repo, source: source, opts: opts, now: time.Now}
}

// NewServiceFromConfig builds a service with the configured artifact source and file names.
func NewServiceFromConfig(repo *repository.Repository) (*Service, error) {
	source, err := SourceFromConfig()
	if err != nil {
		return nil, err
	}
	cfg := config.LoadConfig()
	return NewService(repo, source, Options{
		ModelFile:  cfg.ModelFile,
		ScalerFile: cfg.ScalerFile,
		Version:    cfg.ModelVersion,
	}), nil
}

// Outcome is the interpreted network output.
type Outcome struct {
	RawOutput      float64 `json:"raw_output" example:"0.8731"`
	PredictedClass int     `json:"predicted_class" example:"1"`
	PredictedLabel string  `json:"predicted_label" example:"Prediabetes"`
	Confidence     float64 `json:"confidence" example:"0.1269"`
}

type Result struct {
	Success      bool               `json:"success"`
	PredictionID int64              `json:"prediction_id"`
	PatientID    int64              `json:"patient_id"`
	Prediction   Outcome            `json:"prediction"`
	ModelVersion string             `json:"model_version"`
	PredictedAt  time.Time          `json:"predicted_at"`
	FeaturesUsed map[string]float64 `json:"features_used"`
}

// BatchResult is one entry of a batch; failed entries carry only the error.
type BatchResult struct {
	PatientID    int64    `json:"patient_id"`
	Success      bool     `json:"success"`
	PredictionID int64    `json:"prediction_id,omitempty"`
	Prediction   *Outcome `json:"prediction,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type BatchSummary struct {
	TotalRequested        int           `json:"total_requested"`
	SuccessfulPredictions int           `json:"successful_predictions"`
	FailedPredictions     int           `json:"failed_predictions"`
	ModelVersion          string        `json:"model_version"`
	Results               []BatchResult `json:"results"`
}

// Load returns the classifier, reading the artifacts on first use. A successful load is kept for
// the lifetime of the service; a failed one is retried on the next call.
func (s *Service) Load(ctx context.Context) (*Classifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.classifier != nil {
		return s.classifier, nil
	}

	classifier, err := s.load(ctx)
	if err != nil {
		log.WithError(err).WithField("source", s.source.String()).Error("failed to load prediction model")
		return nil, err
	}
	log.WithFields(log.Fields{
		"source":  s.source.String(),
		"version": classifier.Version,
		"scaled":  classifier.Scaler != nil,
	}).Info("prediction model loaded")
	s.classifier = classifier
	return classifier, nil
}

func (s *Service) load(ctx context.Context) (*Classifier, error) {
	data, err := s.source.Read(ctx, s.opts.ModelFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	network, version, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if s.opts.Version != "" {
		version = s.opts.Version
	}
	classifier := &Classifier{Network: network, Version: version}

	if s.opts.ScalerFile == "" {
		return classifier, nil
	}
	data, err = s.source.Read(ctx, s.opts.ScalerFile)
	switch {
	case errors.Is(err, ErrArtifactNotFound):
		log.WithField("file", s.opts.ScalerFile).Warn("scaler not found, features are used unscaled")
		return classifier, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if classifier.Scaler, err = ParseScaler(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return classifier, nil
}

// Predict scores one patient and records the audit row.
func (s *Service) Predict(ctx context.Context, patientID int64) (Result, error) {
	classifier, err := s.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	profile, err := s.repo.PatientProfile(ctx, patientID)
	if err != nil {
		return Result{}, err
	}
	return s.score(ctx, classifier, profile)
}

// PredictLatest scores the newest patient that has every related record.
func (s *Service) PredictLatest(ctx context.Context) (Result, error) {
	classifier, err := s.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	profile, err := s.repo.LatestCompleteProfile(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.score(ctx, classifier, profile)
}

// PredictBatch scores each patient independently. Only a model load failure
// fails the whole batch.
func (s *Service) PredictBatch(ctx context.Context, patientIDs []int64) (BatchSummary, error) {
	if len(patientIDs) == 0 || len(patientIDs) > MaxBatchSize {
		return BatchSummary{}, fmt.Errorf("batch must hold 1 to %d patient ids, got %d: %w",
			MaxBatchSize, len(patientIDs), util.ErrInvalidInput)
	}
	classifier, err := s.Load(ctx)
	if err != nil {
		return BatchSummary{}, err
	}

	results := lo.Map(patientIDs, func(id int64, _ int) BatchResult {
		return s.batchItem(ctx, classifier, id)
	})
	successful := lo.CountBy(results, func(r BatchResult) bool { return r.Success })
	return BatchSummary{
		TotalRequested:        len(patientIDs),
		SuccessfulPredictions: successful,
		FailedPredictions:     len(patientIDs) - successful,
		ModelVersion:          classifier.Version,
		Results:               results,
	}, nil
}

func (s *Service) batchItem(ctx context.Context, classifier *Classifier, patientID int64) (item BatchResult) {
	item = BatchResult{PatientID: patientID}
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"patient_id": patientID, "panic": r}).Error("batch prediction panicked")
			item = BatchResult{PatientID: patientID, Error: "prediction failed"}
		}
	}()

	profile, err := s.repo.PatientProfile(ctx, patientID)
	if err == nil {
		var res Result
		if res, err = s.score(ctx, classifier, profile); err == nil {
			item.Success = true
			item.PredictionID = res.PredictionID
			item.Prediction = &res.Prediction
			return item
		}
	}

	if errors.Is(err, util.ErrNotFound) {
		item.Error = fmt.Sprintf("patient %d not found", patientID)
	} else {
		log.WithError(err).WithField("patient_id", patientID).Error("batch prediction failed")
		item.Error = "prediction failed"
	}
	return item
}

func (s *Service) score(ctx context.Context, classifier *Classifier, profile model.PatientProfile) (Result, error) {
	features := FeatureVector(profile)
	raw, err := classifier.Score(features)
	if err != nil {
		return Result{}, fmt.Errorf("score patient %d: %w", profile.PatientID, err)
	}
	class, label, confidence := Interpret(raw)
	snapshot := Snapshot(features)
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return Result{}, err
	}

	row := model.Prediction{
		PatientID:       profile.PatientID,
		RawOutput:       raw,
		PredictedClass:  class,
		PredictedLabel:  label,
		ModelVersion:    classifier.Version,
		PredictedAt:     s.now().UTC(),
		FeatureSnapshot: encoded,
	}
	if err := s.repo.InsertPrediction(ctx, &row); err != nil {
		return Result{}, fmt.Errorf("record prediction: %w", err)
	}

	return Result{
		Success:      true,
		PredictionID: row.PredictionID,
		PatientID:    profile.PatientID,
		Prediction: Outcome{
			RawOutput:      round4(raw),
			PredictedClass: class,
			PredictedLabel: label,
			Confidence:     confidence,
		},
		ModelVersion: classifier.Version,
		PredictedAt:  row.PredictedAt,
		FeaturesUsed: snapshot,
	}, nil
}
