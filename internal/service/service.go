package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/danarta/loan-decision-service/internal/config"
	"github.com/danarta/loan-decision-service/internal/insight"
	"github.com/danarta/loan-decision-service/internal/models"
	"github.com/danarta/loan-decision-service/internal/pipeline"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	SaveReportSummary(report *models.DecisionReport) error
}

// Service handles business logic
type Service struct {
	store     Store
	log       *logrus.Logger
	config    *config.Config
	pipe      *pipeline.Pipeline
	sim       *insight.Simulator
	rootCause *insight.RootCauseSynthesizer
	stats     *DigestStats

	// now is the reference clock; swapped in tests for deterministic replay.
	now func() time.Time
}

// NewService initializes a new service
func NewService(
	store Store,
	log *logrus.Logger,
	cfg *config.Config,
	pipe *pipeline.Pipeline,
	sim *insight.Simulator,
	rootCause *insight.RootCauseSynthesizer,
) *Service {
	return &Service{
		store:     store,
		log:       log,
		config:    cfg,
		pipe:      pipe,
		sim:       sim,
		rootCause: rootCause,
		stats:     NewDigestStats(),
		now:       time.Now,
	}
}

// Assess runs the full decision pipeline for one applicant: health rules,
// persona, frozen-model prediction, attribution, root causes, scenario
// replays, and the final recommendation report. One reference timestamp is
// taken up front and shared by the primary run and every scenario replay.
func (s *Service) Assess(
	ctx context.Context,
	profile models.FinancialProfile,
	req models.LoanRequest,
) (*models.DecisionReport, error) {
	asOf := s.now()

	outcome, err := s.pipe.Run(profile, req, asOf)
	if err != nil {
		return nil, err
	}

	rootCause := s.rootCause.Synthesize(outcome.Health, outcome.Attribution)

	scenarios, err := s.sim.RunAll(ctx, profile, req, outcome, asOf)
	if err != nil {
		return nil, err
	}

	recs := insight.BuildRecommendations(outcome.Health, outcome.Prediction, rootCause, scenarios)
	report := insight.BuildReport(outcome, rootCause, scenarios, recs, asOf)

	s.stats.Record(report)
	// The audit row is best effort; a logging failure must not block the
	// caller's decision.
	if err := s.store.SaveReportSummary(report); err != nil {
		s.log.Warnf("Failed to log report %s: %v", report.ID, err)
	}

	s.log.WithFields(logrus.Fields{
		"report_id":    report.ID,
		"health_score": report.HealthAssessment.Score,
		"probability":  report.LoanPrediction.Probability,
		"risk":         report.LoanPrediction.RiskCategory,
		"tier":         report.DecisionSummary.RecommendationTier,
	}).Info("Assessment completed")
	return report, nil
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
