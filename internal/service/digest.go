package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danarta/loan-decision-service/internal/models"
)

// DigestSender delivers the operations digest.
type DigestSender interface {
	SendOpsDigest(to, subject, body string) error
}

// DigestStats accumulates assessment counters between digests. Safe for
// concurrent use.
type DigestStats struct {
	mu             sync.Mutex
	total          int
	byTier         map[string]int
	byRisk         map[string]int
	requiresAction int
	since          time.Time
}

// NewDigestStats returns empty counters.
func NewDigestStats() *DigestStats {
	return &DigestStats{
		byTier: map[string]int{},
		byRisk: map[string]int{},
		since:  time.Now(),
	}
}

// Record counts one issued report.
func (d *DigestStats) Record(report *models.DecisionReport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.total++
	d.byTier[report.DecisionSummary.RecommendationTier]++
	d.byRisk[string(report.LoanPrediction.RiskCategory)]++
	if report.DecisionSummary.RequiresImmediateAction {
		d.requiresAction++
	}
}

// DigestSnapshot is one digest period's counters.
type DigestSnapshot struct {
	Total          int
	ByTier         map[string]int
	ByRisk         map[string]int
	RequiresAction int
	From           time.Time
	To             time.Time
}

// Snapshot returns the current counters and resets them for the next period.
func (d *DigestStats) Snapshot(now time.Time) DigestSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := DigestSnapshot{
		Total:          d.total,
		ByTier:         d.byTier,
		ByRisk:         d.byRisk,
		RequiresAction: d.requiresAction,
		From:           d.since,
		To:             now,
	}
	d.total = 0
	d.byTier = map[string]int{}
	d.byRisk = map[string]int{}
	d.requiresAction = 0
	d.since = now
	return snap
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("  %s: %d", k, counts[k]))
	}
	if len(parts) == 0 {
		return "  none"
	}
	return strings.Join(parts, "\n")
}

// Format renders the digest body as plain text.
func (s DigestSnapshot) Format() string {
	return fmt.Sprintf(
		"Loan decision service digest\nPeriod: %s to %s\n\n"+
			"Assessments issued: %d\nRequiring immediate action: %d\n\n"+
			"By recommendation tier:\n%s\n\nBy risk category:\n%s\n",
		s.From.Format("2006-01-02 15:04"), s.To.Format("2006-01-02 15:04"),
		s.Total, s.RequiresAction,
		formatCounts(s.ByTier), formatCounts(s.ByRisk),
	)
}

// SendDailyDigest mails the accumulated counters and resets them. A missing
// recipient disables the digest without error.
func (s *Service) SendDailyDigest(sender DigestSender) error {
	if s.config.DigestTo == "" {
		return nil
	}
	snap := s.stats.Snapshot(s.now())
	subject := fmt.Sprintf("Loan decision digest %s", snap.To.Format("2006-01-02"))
	if err := sender.SendOpsDigest(s.config.DigestTo, subject, snap.Format()); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	s.log.Infof("Digest sent: %d assessments", snap.Total)
	return nil
}
