// Package predict runs a passenger submission through validation, encoding
// and the loaded classifier.
package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"titanic/db"
	"titanic/ml"
	"titanic/monitoring"
)

type ModelSource interface {
	Current() (*ml.Model, error)
}

type Recorder interface {
	SavePrediction(ctx context.Context, record db.Record) error
}

type Publisher interface {
	Publish(kind monitoring.MessageType, data interface{})
}

type Result struct {
	db.Record
	Cached bool `json:"cached"`
}

type cacheKey struct {
	version string
	vector  ml.FeatureVector
}

type Options struct {
	Strict    bool
	CacheSize int
	Recorder  Recorder
	Publisher Publisher
	Metrics   *monitoring.MetricsCollector
	Logger    *zap.Logger
}

// Service is safe for concurrent use.
type Service struct {
	models       ModelSource
	preprocessor *ml.Preprocessor
	cache        *lru.Cache[cacheKey, ml.Prediction]
	recorder     Recorder
	publisher    Publisher
	metrics      *monitoring.MetricsCollector
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(models ModelSource, opts Options) (*Service, error) {
	if models == nil {
		return nil, ml.ErrModelUnavailable
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		models:       models,
		preprocessor: ml.NewPreprocessor(opts.Strict),
		recorder:     opts.Recorder,
		publisher:    opts.Publisher,
		metrics:      opts.Metrics,
		logger:       logger,
		now:          time.Now,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[cacheKey, ml.Prediction](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Encode validates (when strict) and encodes without touching the model.
func (s *Service) Encode(raw ml.RawPassengerInput) (ml.FeatureVector, error) {
	_, vector, err := s.preprocessor.Prepare(raw)
	if err != nil {
		s.metrics.IncrCounter(monitoring.MetricRejectedInputs)
		return ml.FeatureVector{}, err
	}
	return vector, nil
}

func (s *Service) Predict(ctx context.Context, raw ml.RawPassengerInput) (*Result, error) {
	start := s.now()

	raw, vector, err := s.preprocessor.Prepare(raw)
	if err != nil {
		s.metrics.IncrCounter(monitoring.MetricRejectedInputs)
		return nil, err
	}

	model, err := s.models.Current()
	if err != nil {
		s.metrics.IncrCounter(monitoring.MetricErrors)
		return nil, err
	}

	key := cacheKey{version: model.Version, vector: vector}
	prediction, cached := s.lookup(key)
	if !cached {
		prediction, err = ml.Run(model.Classifier, vector)
		if err != nil {
			s.metrics.IncrCounter(monitoring.MetricErrors)
			return nil, fmt.Errorf("classify %s: %w", vector, err)
		}
		if s.cache != nil {
			s.cache.Add(key, prediction)
		}
	} else {
		s.metrics.IncrCounter(monitoring.MetricCacheHits)
	}

	result := &Result{
		Record: db.Record{
			ID:           uuid.NewString(),
			Input:        raw,
			Features:     vector,
			Prediction:   prediction,
			ModelVersion: model.Version,
			CreatedAt:    s.now(),
		},
		Cached: cached,
	}

	s.metrics.IncrCounter(monitoring.MetricPredictions)
	if prediction.Survived() {
		s.metrics.IncrCounter(monitoring.MetricSurvived)
	}
	s.metrics.ObserveLatency(s.now().Sub(start))

	if s.recorder != nil {
		if err := s.recorder.SavePrediction(ctx, result.Record); err != nil {
			s.logger.Error("record prediction", zap.String("id", result.ID), zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(monitoring.PredictionEvent, result)
	}

	s.logger.Info("prediction served",
		zap.String("id", result.ID),
		zap.Ints("features", vector.Ints()),
		zap.Int("label", prediction.Label),
		zap.Float64("p_survived", prediction.SurvivalProbability()),
		zap.String("model_version", model.Version),
		zap.Bool("cached", cached))
	return result, nil
}

func (s *Service) lookup(key cacheKey) (ml.Prediction, bool) {
	if s.cache == nil {
		return ml.Prediction{}, false
	}
	return s.cache.Get(key)
}

func (s *Service) Model() (ml.ModelInfo, error) {
	model, err := s.models.Current()
	if err != nil {
		return ml.ModelInfo{}, err
	}
	return model.Info(), nil
}

// IsInputError reports whether err came from rejecting the submission.
func IsInputError(err error) bool {
	return errors.Is(err, ml.ErrInvalidInput)
}
