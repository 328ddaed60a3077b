package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/danarta/loan-decision-service/internal/config"
	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/health"
	"github.com/danarta/loan-decision-service/internal/insight"
	"github.com/danarta/loan-decision-service/internal/model"
	"github.com/danarta/loan-decision-service/internal/models"
	"github.com/danarta/loan-decision-service/internal/pipeline"
	"github.com/danarta/loan-decision-service/internal/policy"
)

const serviceArtifactXML = `<?xml version="1.0" encoding="UTF-8"?>
<scorecard model="gradient-scorecard" version="2.0.0" schema="v3">
  <intercept>-1.90</intercept>
  <terms>
    <numeric feature="dti" weight="0.28" mean="3.0"/>
    <numeric feature="expense_ratio" weight="1.30" mean="0.70"/>
    <numeric feature="disposable_ratio" weight="-1.90" mean="0.15"/>
  </terms>
</scorecard>`

type fakeStore struct {
	users       map[string]*models.User
	savedUsers  int
	saved       []*models.DecisionReport
	saveFailure error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*models.User{}}
}

func (f *fakeStore) CreateUser(user *models.User) error {
	f.savedUsers++
	user.ID = f.savedUsers
	f.users[user.Email] = user
	return nil
}

func (f *fakeStore) FindUserByEmail(email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (f *fakeStore) SaveReportSummary(report *models.DecisionReport) error {
	if f.saveFailure != nil {
		return f.saveFailure
	}
	f.saved = append(f.saved, report)
	return nil
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	artifact, err := model.ParseArtifact([]byte(serviceArtifactXML))
	require.NoError(t, err)

	pipe := pipeline.New(
		health.NewAnalyzer(),
		features.NewAssembler(features.NewTables(nil, 0.08)),
		model.NewPredictor(artifact),
	)
	pol := policy.Default()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc := NewService(store, logger, &config.Config{JWTSecret: "test-secret", DigestTo: "ops@lending.local"},
		pipe, insight.NewSimulator(pipe, pol), insight.NewRootCauseSynthesizer(pol.RootCause))
	svc.now = func() time.Time { return time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validAssessInputs() (models.FinancialProfile, models.LoanRequest) {
	profile := models.FinancialProfile{
		Income:           9_000_000,
		FixedExpenses:    4_000_000,
		VariableExpenses: 2_800_000,
		Savings:          8_000_000,
		Debt:             45_000_000,
	}
	req := models.LoanRequest{
		Amount:           20_000_000,
		DurationDays:     90,
		LoanType:         "Modal Usaha",
		Province:         "Jawa Timur",
		BorrowerStatus:   "Individual",
		Sector:           "Jasa",
		Education:        "SMA",
		CollateralType:   "BPKB Motor",
		DisbursementDate: "2024-05-01",
	}
	return profile, req
}

func TestAssessProducesFullReport(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	profile, req := validAssessInputs()

	report, err := svc.Assess(context.Background(), profile, req)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC), report.GeneratedAt)
	require.NotNil(t, report.HealthAssessment)
	require.NotNil(t, report.LoanPrediction)
	require.NotNil(t, report.Attribution)
	require.NotNil(t, report.RootCause)
	assert.Len(t, report.Scenarios, len(policy.Default().Scenarios))
	assert.NotEmpty(t, report.DecisionSummary.RecommendationTier)

	require.Len(t, store.saved, 1)
	assert.Equal(t, report.ID, store.saved[0].ID)
}

func TestAssessSurvivesAuditFailure(t *testing.T) {
	store := newFakeStore()
	store.saveFailure = fmt.Errorf("db down")
	svc := newTestService(t, store)
	profile, req := validAssessInputs()

	report, err := svc.Assess(context.Background(), profile, req)
	require.NoError(t, err, "audit logging is best effort")
	assert.NotEmpty(t, report.ID)
}

func TestAssessRejectsInvalidProfile(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	profile, req := validAssessInputs()
	profile.Income = -100

	_, err := svc.Assess(context.Background(), profile, req)
	var invalid *health.InvalidProfileError
	require.ErrorAs(t, err, &invalid)
}

func TestAssessIsDeterministicUnderFixedClock(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	profile, req := validAssessInputs()

	first, err := svc.Assess(context.Background(), profile, req)
	require.NoError(t, err)
	second, err := svc.Assess(context.Background(), profile, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.HealthAssessment, second.HealthAssessment)
	assert.Equal(t, first.LoanPrediction, second.LoanPrediction)
	assert.Equal(t, first.Scenarios, second.Scenarios)
	assert.Equal(t, first.DecisionSummary, second.DecisionSummary)
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	user, err := svc.Register("budi", "budi@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))

	tokenString, err := svc.Login("budi@example.com", "s3cret")
	require.NoError(t, err)

	// The fixed test clock puts the expiry in the past; skip claim checks.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	subject, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "1", subject)

	_, err = svc.Login("budi@example.com", "wrong")
	assert.Error(t, err)
	_, err = svc.Login("nobody@example.com", "s3cret")
	assert.Error(t, err)
}
