package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/example/venue-discovery/internal/models"
)

// Legacy clients persisted records under drifting key names. The alias
// tables map every shape seen in the wild onto one canonical field set,
// applied once at the local-to-remote migration boundary. The canonical
// key always wins; aliases are fallbacks in listed order.
var subjectAliases = []string{"subject_id", "id", "venue_id", "venueId"}

var fieldAliases = map[string][]string{
	"name":     {"venue_name", "venueName", "title"},
	"category": {"venue_category", "type"},
	"note":     {"notes"},
	"quantity": {"qty", "count"},
	"address":  {"venue_address"},
}

// normalizeRecord converts one raw persisted record into canonical
// form. Records with no resolvable subject id are rejected.
func normalizeRecord(raw map[string]any) (models.OwnedRecord, error) {
	var rec models.OwnedRecord
	for _, k := range subjectAliases {
		if s := stringValue(raw[k]); s != "" {
			rec.SubjectID = s
			break
		}
	}
	if rec.SubjectID == "" {
		return rec, fmt.Errorf("record has no subject id: %v", raw)
	}
	rec.Fields = make(map[string]string)
	aliasOf := make(map[string]string)
	for canonical, aliases := range fieldAliases {
		for _, a := range aliases {
			aliasOf[a] = canonical
		}
	}
	// Keep every plain field under its canonical key; subject id keys
	// and alias keys never pass through verbatim.
	for k, v := range raw {
		if isSubjectKey(k) {
			continue
		}
		if _, isAlias := aliasOf[k]; isAlias {
			continue
		}
		if s := stringValue(v); s != "" {
			rec.Fields[k] = s
		}
	}
	for canonical, aliases := range fieldAliases {
		if _, ok := rec.Fields[canonical]; ok {
			continue
		}
		for _, alias := range aliases {
			if s := stringValue(raw[alias]); s != "" {
				rec.Fields[canonical] = s
				break
			}
		}
	}
	if len(rec.Fields) == 0 {
		rec.Fields = nil
	}
	return rec, nil
}

func isSubjectKey(k string) bool {
	for _, s := range subjectAliases {
		if k == s {
			return true
		}
	}
	return false
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// decodeLocal parses the serialized record list held under a local
// storage key. A record that cannot be normalized is dropped rather
// than poisoning the rest of the batch.
func decodeLocal(serialized string) ([]models.OwnedRecord, error) {
	var raws []map[string]any
	if err := json.Unmarshal([]byte(serialized), &raws); err != nil {
		return nil, err
	}
	out := make([]models.OwnedRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := normalizeRecord(raw)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeLocal(recs []models.OwnedRecord) (string, error) {
	raws := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		raw := map[string]any{"subject_id": rec.SubjectID}
		for k, v := range rec.Fields {
			raw[k] = v
		}
		raws = append(raws, raw)
	}
	b, err := json.Marshal(raws)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
