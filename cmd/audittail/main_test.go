package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriqcert/internal/audit"
)

func TestFilterMatch(t *testing.T) {
	issued := audit.Event{Action: audit.ActionCredentialIssued, EntityID: "c-1"}

	cases := []struct {
		name string
		f    filter
		want bool
	}{
		{"empty filter", filter{}, true},
		{"exact action", filter{action: "credential.issued"}, true},
		{"other action", filter{action: "credential.revoked"}, false},
		{"action prefix", filter{action: "credential."}, true},
		{"prefix without dot is exact", filter{action: "credential"}, false},
		{"entity match", filter{entityID: "c-1"}, true},
		{"entity mismatch", filter{action: "credential.", entityID: "c-2"}, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.match(issued))
		})
	}
}

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	value := []byte(`{"action":"batch.submitted","entityType":"batch","entityId":"b-1","timestamp":"2025-06-01T12:00:00Z"}`)

	require.NoError(t, printRecord(&buf, value, filter{action: "batch."}))
	assert.Contains(t, buf.String(), `"entityId":"b-1"`)

	buf.Reset()
	require.NoError(t, printRecord(&buf, value, filter{action: "credential."}))
	assert.Empty(t, buf.String())

	assert.Error(t, printRecord(&buf, []byte("not json"), filter{}))
}
