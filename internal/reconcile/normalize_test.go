package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRecord(t *testing.T) {
	cases := []struct {
		name    string
		raw     map[string]any
		subject string
		fields  map[string]string
		wantErr bool
	}{
		{
			name:    "canonical shape passes through",
			raw:     map[string]any{"subject_id": "v1", "name": "Cafe X"},
			subject: "v1",
			fields:  map[string]string{"name": "Cafe X"},
		},
		{
			name:    "legacy aliases mapped",
			raw:     map[string]any{"venue_id": "v2", "venue_name": "Bar Y", "qty": float64(2)},
			subject: "v2",
			fields:  map[string]string{"name": "Bar Y", "quantity": "2"},
		},
		{
			name:    "canonical wins over alias",
			raw:     map[string]any{"id": "v3", "name": "New", "title": "Old"},
			subject: "v3",
			fields:  map[string]string{"name": "New"},
		},
		{
			name:    "no subject id rejected",
			raw:     map[string]any{"name": "orphan"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := normalizeRecord(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.subject, rec.SubjectID)
			assert.Equal(t, tc.fields, rec.Fields)
		})
	}
}

func TestDecodeLocalDropsUnreadableRecords(t *testing.T) {
	recs, err := decodeLocal(`[{"id":"v1"},{"name":"no subject"},{"id":"v2"}]`)
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	recs, err := decodeLocal(`[{"subject_id":"v1","name":"Cafe X","note":"window seat"}]`)
	assert.NoError(t, err)

	serialized, err := encodeLocal(recs)
	assert.NoError(t, err)

	again, err := decodeLocal(serialized)
	assert.NoError(t, err)
	assert.Equal(t, recs, again)
}
