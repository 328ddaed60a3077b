package repository

import (
	"database/sql"
	"fmt"

	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LoadAggregationTables reads the precomputed per-category default rates and
// the global average. The rates are produced offline alongside the model
// artifact and must match its training data.
func (r *Repository) LoadAggregationTables() (*features.Tables, error) {
	var globalRate float64
	err := r.db.QueryRow(`SELECT global_default_rate FROM lending.model_stats ORDER BY computed_at DESC LIMIT 1`).
		Scan(&globalRate)
	if err != nil {
		return nil, fmt.Errorf("failed to load global default rate: %w", err)
	}

	rows, err := r.db.Query(`SELECT field_name, category, default_rate FROM lending.category_default_rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to load category default rates: %w", err)
	}
	defer rows.Close()

	rates := map[string]map[string]float64{}
	for rows.Next() {
		var field, category string
		var rate float64
		if err := rows.Scan(&field, &category, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan category rate: %w", err)
		}
		if rates[field] == nil {
			rates[field] = map[string]float64{}
		}
		rates[field][category] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category rates: %w", err)
	}

	return features.NewTables(rates, globalRate), nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO lending.users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM lending.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SaveReportSummary records a compact audit row for an issued report.
func (r *Repository) SaveReportSummary(report *models.DecisionReport) error {
	query := `
		INSERT INTO lending.report_log (id, generated_at, health_score, probability, risk_category, tier)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(query,
		report.ID,
		report.GeneratedAt,
		report.HealthAssessment.Score,
		report.LoanPrediction.Probability,
		string(report.LoanPrediction.RiskCategory),
		report.DecisionSummary.RecommendationTier,
	)
	if err != nil {
		return fmt.Errorf("failed to save report summary: %w", err)
	}
	return nil
}
