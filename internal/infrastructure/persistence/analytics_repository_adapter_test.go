package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// aggregateLine строка outcomeAggregates с колонкой alias.
func aggregateLine(t *testing.T, alias string) string {
	t.Helper()
	for _, line := range strings.Split(outcomeAggregates, "\n") {
		if strings.HasSuffix(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ",")), "AS "+alias) {
			return line
		}
	}
	require.Failf(t, "column not found", "alias %q", alias)
	return ""
}

func TestOutcomeAggregates_MatchReached(t *testing.T) {
	columns := map[string]valueobject.ProposalOutcome{
		"viewed":      valueobject.OutcomeViewed,
		"responded":   valueobject.OutcomeResponded,
		"interviewed": valueobject.OutcomeInterviewed,
		"awarded":     valueobject.OutcomeAwarded,
		"rejected":    valueobject.OutcomeRejected,
		"no_response": valueobject.OutcomeNoResponse,
	}

	for alias, stage := range columns {
		line := aggregateLine(t, alias)
		for _, o := range valueobject.AllOutcomes {
			assert.Equal(t, o.Reached(stage), strings.Contains(line, "'"+string(o)+"'"),
				"column %s, outcome %s", alias, o)
		}
	}
}

func TestOutcomeAggregates_CumulativeBuckets(t *testing.T) {
	assert.Equal(t,
		"p.current_outcome IN ('proposal_viewed', 'client_responded', 'interviewed', 'job_awarded')",
		reachedFilter(valueobject.OutcomeViewed))
	assert.Equal(t,
		"p.current_outcome IN ('client_responded', 'interviewed', 'job_awarded')",
		reachedFilter(valueobject.OutcomeResponded))
	assert.Equal(t,
		"p.current_outcome IN ('interviewed', 'job_awarded')",
		reachedFilter(valueobject.OutcomeInterviewed))
	assert.Equal(t, "p.current_outcome IN ('job_awarded')", reachedFilter(valueobject.OutcomeAwarded))
	assert.Equal(t, "p.current_outcome IN ('proposal_rejected')", reachedFilter(valueobject.OutcomeRejected))
	assert.Equal(t, "p.current_outcome IN ('no_response')", reachedFilter(valueobject.OutcomeNoResponse))

	// total без фильтра: считает все семь исходов
	assert.Contains(t, aggregateLine(t, "total"), "COUNT(*) AS total")
}
