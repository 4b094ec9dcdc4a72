package pagerduty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhook(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantNil        bool
		wantErr        bool
		wantIncidentID string
	}{
		{
			name:           "incident triggered",
			body:           `{"event":{"id":"evt1","event_type":"incident.triggered","resource_type":"incident","data":{"id":"PINC1","type":"incident"}}}`,
			wantIncidentID: "PINC1",
		},
		{
			name:           "incident annotated",
			body:           `{"event":{"id":"evt2","event_type":"incident.annotated","resource_type":"incident","data":{"type":"incident_note","content":"what is the runbook?","incident":{"id":"PINC2"}}}}`,
			wantIncidentID: "PINC2",
		},
		{
			name:    "non incident resource",
			body:    `{"event":{"id":"evt3","event_type":"service.updated","resource_type":"service","data":{"id":"PSVC1"}}}`,
			wantNil: true,
		},
		{
			name:    "incident without id",
			body:    `{"event":{"id":"evt4","event_type":"incident.triggered","resource_type":"incident","data":{"type":"something_else"}}}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			body:    `{"event":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := ParseWebhook([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, evt)
				return
			}
			require.NotNil(t, evt)
			assert.Equal(t, tt.wantIncidentID, evt.IncidentID)
		})
	}
}

func TestParseWebhookCarriesNoteContent(t *testing.T) {
	body := `{"event":{"id":"evt5","event_type":"incident.annotated","resource_type":"incident","data":{"type":"incident_note","content":"restart order?","incident":{"id":"PINC9"}}}}`

	evt, err := ParseWebhook([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, evt)
	assert.Equal(t, "restart order?", evt.NoteContent)
}

func TestIsOwnNote(t *testing.T) {
	c := NewClient("key", "bot@example.com", "Posted by Knowledge Assistant")

	assert.True(t, c.IsOwnNote("Here is the runbook.\n\nPosted by Knowledge Assistant"))
	assert.False(t, c.IsOwnNote("human question about the runbook"))

	untagged := NewClient("key", "bot@example.com", "")
	assert.False(t, untagged.IsOwnNote("anything at all"))
}
