package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

func TestProposalOutcome_Reached(t *testing.T) {
	tests := []struct {
		current ProposalOutcome
		stage   ProposalOutcome
		want    bool
	}{
		{OutcomeAwarded, OutcomeSent, true},
		{OutcomeAwarded, OutcomeViewed, true},
		{OutcomeAwarded, OutcomeResponded, true},
		{OutcomeAwarded, OutcomeInterviewed, true},
		{OutcomeViewed, OutcomeResponded, false},
		{OutcomeSent, OutcomeViewed, false},
		{OutcomeRejected, OutcomeSent, true},
		{OutcomeRejected, OutcomeViewed, false},
		{OutcomeRejected, OutcomeRejected, true},
		{OutcomeNoResponse, OutcomeRejected, false},
		{OutcomeAwarded, OutcomeRejected, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.current.Reached(tt.stage), "%s reached %s", tt.current, tt.stage)
	}
}

func TestProposalOutcome_ValidateTransition(t *testing.T) {
	assert.NoError(t, OutcomeSent.ValidateTransition(OutcomeAwarded))
	assert.NoError(t, OutcomeInterviewed.ValidateTransition(OutcomeViewed))
	assert.NoError(t, OutcomeAwarded.ValidateTransition(OutcomeAwarded))

	err := OutcomeRejected.ValidateTransition(OutcomeViewed)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	assert.Error(t, OutcomeSent.ValidateTransition("shipped"))
}

func TestNewProposalOutcome(t *testing.T) {
	o, err := NewProposalOutcome(" Job_Awarded ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwarded, o)
	assert.True(t, o.IsTerminal())

	_, err = NewProposalOutcome("won")
	assert.Error(t, err)

	assert.Len(t, AllOutcomes, 7)
}

func TestTemplateStatusAndTone(t *testing.T) {
	s, err := NewTemplateStatus("ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, TemplateStatusActive, s)

	_, err = NewTemplateStatus("published")
	assert.Error(t, err)

	assert.Len(t, AllTones, 6)
	assert.Equal(t, ToneCasual, ToneOrDefault("casual"))
	assert.Equal(t, ToneProfessional, ToneOrDefault("sarcastic"))
}
