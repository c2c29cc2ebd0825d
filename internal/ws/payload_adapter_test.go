package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
)

type capturePublisher struct {
	event string
	data  any
}

func (c *capturePublisher) Publish(_ uuid.UUID, event string, data any) {
	c.event = event
	c.data = data
}

func publishedKeys(t *testing.T, data any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestPayloadPublisher_TemplateUsesCamelCase(t *testing.T) {
	userID := uuid.New()
	tpl, err := entity.NewTemplate(userID, entity.TemplateParams{Title: "Web", Content: "Hi"})
	require.NoError(t, err)

	next := &capturePublisher{}
	NewPayloadPublisher(next).Publish(userID, repository.EventTemplateCreated, tpl)

	assert.Equal(t, repository.EventTemplateCreated, next.event)
	keys := publishedKeys(t, next.data)
	assert.Equal(t, tpl.ID.String(), keys["id"])
	assert.Contains(t, keys, "usageCount")
	assert.NotContains(t, keys, "UsageCount")
	assert.NotContains(t, keys, "UserID")
}

func TestPayloadPublisher_ProposalUsesCamelCase(t *testing.T) {
	userID := uuid.New()
	p, err := entity.NewProposalTracking(userID, entity.ProposalParams{JobTitle: "API", JobDescription: "Build it"})
	require.NoError(t, err)

	next := &capturePublisher{}
	NewPayloadPublisher(next).Publish(userID, repository.EventProposalCreated, p)

	keys := publishedKeys(t, next.data)
	assert.Equal(t, "proposal_sent", keys["currentOutcome"])
	assert.NotContains(t, keys, "CurrentOutcome")
}

func TestPayloadPublisher_PassesOtherPayloads(t *testing.T) {
	next := &capturePublisher{}
	payload := map[string]string{"from": "proposal_sent"}
	NewPayloadPublisher(next).Publish(uuid.New(), repository.EventProposalOutcomeChanged, payload)
	assert.Equal(t, payload, next.data)
}
