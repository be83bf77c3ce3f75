// Package profile holds the request-scoped job profile a prediction is made for.
package profile

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/salarycast/internal/domain/columns"
)

// Required lists the logical fields every profile must carry.
var Required = []string{
	columns.JobRole,
	columns.ExperienceLevel,
	columns.EmploymentType,
	columns.CompanySize,
	columns.CompanyLocation,
	columns.EmployeeResidence,
	columns.RemoteRatio,
	columns.WorkYear,
}

// Profile maps logical feature names to raw values. Values are either raw
// codes or display labels; resolution happens in the prediction service.
type Profile map[string]string

// Value returns the trimmed value for name and whether it is present and non-empty.
func (p Profile) Value(name string) (string, bool) {
	v, ok := p[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Missing returns the required fields absent from p, in Required order.
func (p Profile) Missing() []string {
	var out []string
	for _, name := range Required {
		if _, ok := p.Value(name); !ok {
			out = append(out, name)
		}
	}
	return out
}

// Names returns the field names present in p, sorted.
func (p Profile) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Clone returns an independent copy of p.
func (p Profile) Clone() Profile {
	return maps.Clone(p)
}

// UnmarshalJSON accepts string, number and boolean values. Nulls are dropped
// so they surface as missing fields.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Profile, len(raw))
	for k, msg := range raw {
		v, ok, err := scalar(msg)
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		if ok {
			out[k] = v
		}
	}
	*p = out
	return nil
}

func scalar(msg json.RawMessage) (string, bool, error) {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(msg)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", false, err
	}
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case json.Number:
		return t.String(), true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	default:
		return "", false, fmt.Errorf("unsupported value %s", string(msg))
	}
}
