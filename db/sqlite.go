package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"titanic/ml"
)

// Record is one served prediction.
type Record struct {
	ID           string               `json:"id"`
	Input        ml.RawPassengerInput `json:"input"`
	Features     ml.FeatureVector     `json:"features"`
	Prediction   ml.Prediction        `json:"prediction"`
	ModelVersion string               `json:"model_version"`
	CreatedAt    time.Time            `json:"created_at"`
}

type Summary struct {
	Total       int     `json:"total"`
	Survived    int     `json:"survived"`
	AvgSurvival float64 `json:"avg_survival_probability"`
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        pclass INTEGER NOT NULL,
        sex TEXT NOT NULL,
        age INTEGER NOT NULL,
        sibsp INTEGER NOT NULL,
        parch INTEGER NOT NULL,
        fare REAL NOT NULL,
        embarked TEXT NOT NULL,
        features TEXT NOT NULL,
        predicted_label INTEGER NOT NULL,
        p_not_survived REAL NOT NULL,
        p_survived REAL NOT NULL,
        model_version VARCHAR(20),
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SavePrediction(ctx context.Context, record Record) error {
	features, err := json.Marshal(record.Features)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (id, name, pclass, sex, age, sibsp, parch, fare, embarked,
            features, predicted_label, p_not_survived, p_survived, model_version, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Input.FullName,
		record.Input.TicketClass,
		record.Input.Sex,
		record.Input.Age,
		record.Input.SiblingsSpouses,
		record.Input.ParentsChildren,
		record.Input.Fare,
		record.Input.EmbarkationPort,
		string(features),
		record.Prediction.Label,
		record.Prediction.Probabilities[0],
		record.Prediction.Probabilities[1],
		record.ModelVersion,
		record.CreatedAt.UTC(),
	)
	return err
}

// RecentPredictions returns up to limit records, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, pclass, sex, age, sibsp, parch, fare, embarked, features,
            predicted_label, p_not_survived, p_survived, model_version, created_at
        FROM predictions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var record Record
		var features string
		var version sql.NullString
		if err := rows.Scan(
			&record.ID,
			&record.Input.FullName,
			&record.Input.TicketClass,
			&record.Input.Sex,
			&record.Input.Age,
			&record.Input.SiblingsSpouses,
			&record.Input.ParentsChildren,
			&record.Input.Fare,
			&record.Input.EmbarkationPort,
			&features,
			&record.Prediction.Label,
			&record.Prediction.Probabilities[0],
			&record.Prediction.Probabilities[1],
			&version,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &record.Features); err != nil {
			return nil, fmt.Errorf("record %s: %w", record.ID, err)
		}
		record.ModelVersion = version.String
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var summary Summary
	var survived sql.NullInt64
	var average sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*), SUM(predicted_label), AVG(p_survived) FROM predictions`).
		Scan(&summary.Total, &survived, &average)
	if err != nil {
		return Summary{}, err
	}
	summary.Survived = int(survived.Int64)
	summary.AvgSurvival = average.Float64
	return summary, nil
}
