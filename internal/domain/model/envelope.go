package model

import (
	"encoding/json"
	"fmt"
)

// Persisted model kinds.
const (
	KindMean   = "mean"
	KindLinear = "linear"
	KindRidge  = "ridge"
	KindTree   = "tree"
)

type envelope struct {
	Kind   string          `json:"kind"`
	RunID  string          `json:"run_id,omitempty"`
	Params json.RawMessage `json:"params"`
}

// Encode writes r as {"kind": ..., "run_id": ..., "params": ...}. runID
// names the training run the model came from.
func Encode(r Regressor, runID string) ([]byte, error) {
	switch r.(type) {
	case *Mean, *Linear, *Tree:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, r)
	}
	params, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(envelope{Kind: r.Name(), RunID: runID, Params: params}, "", "  ")
}

// Decode restores a regressor written by Encode along with its run id.
// Structurally invalid params fail with ErrCorruptModel.
func Decode(data []byte) (Regressor, string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("decode model envelope: %w", err)
	}
	var r Regressor
	switch env.Kind {
	case KindMean:
		r = &Mean{}
	case KindLinear, KindRidge:
		r = &Linear{}
	case KindTree:
		r = &Tree{}
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
	if err := json.Unmarshal(env.Params, r); err != nil {
		return nil, "", fmt.Errorf("decode %s params: %w", env.Kind, err)
	}
	if r.Name() != env.Kind {
		return nil, "", fmt.Errorf("%w: envelope says %q, params describe %q", ErrUnknownKind, env.Kind, r.Name())
	}
	if t, ok := r.(*Tree); ok {
		if err := t.validate(); err != nil {
			return nil, "", err
		}
	}
	return r, env.RunID, nil
}
