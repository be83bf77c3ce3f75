// Package repository persists training artifacts and loads them back as a
// validated bundle.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/salarycast/internal/domain/artifact"
	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/model"
)

// Store reads and writes raw artifact blobs by artifact name.
type Store interface {
	// Name identifies the backend in logs.
	Name() string
	// Location describes where artifacts live, for operator messages.
	Location() string
	// Read returns the blobs for names. Absent artifacts are left out of
	// the map rather than reported as errors.
	Read(ctx context.Context, names []string) (map[string][]byte, error)
	// Write stores all blobs. Backends write them as one unit where they can.
	Write(ctx context.Context, blobs map[string][]byte) error
	Close() error
}

// Status reports which artifacts are present.
func Status(ctx context.Context, s Store) (map[string]bool, error) {
	blobs, err := s.Read(ctx, artifact.Names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(artifact.Names))
	for _, n := range artifact.Names {
		_, out[n] = blobs[n]
	}
	return out, nil
}

// encodersDoc is the persisted form of encoders.json. Files holding a bare
// codec.Set are still read, with no run id.
type encodersDoc struct {
	RunID    string    `json:"run_id,omitempty"`
	Encoders codec.Set `json:"encoders"`
}

// LoadBundle reads all four artifacts, decodes and validates them. If any
// artifact is absent the error is a *MissingArtifactError naming all of them.
// Artifacts stamped by different training runs fail with *RunMismatchError.
func LoadBundle(ctx context.Context, s Store) (*artifact.Bundle, error) {
	blobs, err := read(ctx, s, artifact.Names)
	if err != nil {
		return nil, err
	}

	var b artifact.Bundle
	runs := make(map[string]string, len(artifact.Names))
	if b.Model, runs[artifact.Model], err = model.Decode(blobs[artifact.Model]); err != nil {
		return nil, corrupt(artifact.Model, err)
	}
	if b.Codecs, runs[artifact.Encoders], err = decodeCodecs(blobs[artifact.Encoders]); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blobs[artifact.ColumnMappings], &b.Columns); err != nil {
		return nil, corrupt(artifact.ColumnMappings, err)
	}
	runs[artifact.ColumnMappings] = b.Columns.RunID
	if err := json.Unmarshal(blobs[artifact.ModelInfo], &b.Info); err != nil {
		return nil, corrupt(artifact.ModelInfo, err)
	}
	runs[artifact.ModelInfo] = b.Info.RunID
	for _, run := range runs {
		if run != b.Info.RunID {
			return nil, &RunMismatchError{Runs: runs}
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadEncoders reads only the codecs and column registry.
func LoadEncoders(ctx context.Context, s Store) (codec.Set, columns.Registry, error) {
	blobs, err := read(ctx, s, []string{artifact.Encoders, artifact.ColumnMappings})
	if err != nil {
		return nil, columns.Registry{}, err
	}
	return decodeEncoders(blobs)
}

// SaveBundle writes all four artifacts, each stamped with b.Info.RunID.
func SaveBundle(ctx context.Context, s Store, b *artifact.Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	reg := b.Columns
	reg.RunID = b.Info.RunID
	blobs, err := encodeEncoders(b.Codecs, reg)
	if err != nil {
		return err
	}
	if blobs[artifact.Model], err = model.Encode(b.Model, b.Info.RunID); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if blobs[artifact.ModelInfo], err = json.MarshalIndent(b.Info, "", "  "); err != nil {
		return fmt.Errorf("encode model info: %w", err)
	}
	return s.Write(ctx, blobs)
}

// SaveEncoders writes the codecs and column registry only, stamped with
// reg.RunID. A model trained by another run no longer loads against them.
func SaveEncoders(ctx context.Context, s Store, codecs codec.Set, reg columns.Registry) error {
	blobs, err := encodeEncoders(codecs, reg)
	if err != nil {
		return err
	}
	return s.Write(ctx, blobs)
}

func read(ctx context.Context, s Store, names []string) (map[string][]byte, error) {
	blobs, err := s.Read(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("read artifacts from %s: %w", s.Name(), err)
	}
	var missing []string
	for _, n := range names {
		if _, ok := blobs[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingArtifactError{Location: s.Location(), Names: missing}
	}
	return blobs, nil
}

func decodeEncoders(blobs map[string][]byte) (codec.Set, columns.Registry, error) {
	codecs, run, err := decodeCodecs(blobs[artifact.Encoders])
	if err != nil {
		return nil, columns.Registry{}, err
	}
	var reg columns.Registry
	if err := json.Unmarshal(blobs[artifact.ColumnMappings], &reg); err != nil {
		return nil, columns.Registry{}, corrupt(artifact.ColumnMappings, err)
	}
	if run != reg.RunID {
		return nil, columns.Registry{}, &RunMismatchError{Runs: map[string]string{
			artifact.Encoders:       run,
			artifact.ColumnMappings: reg.RunID,
		}}
	}
	return codecs, reg, nil
}

func decodeCodecs(data []byte) (codec.Set, string, error) {
	var doc encodersDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", corrupt(artifact.Encoders, err)
	}
	if doc.Encoders != nil {
		return doc.Encoders, doc.RunID, nil
	}
	var codecs codec.Set
	if err := json.Unmarshal(data, &codecs); err != nil {
		return nil, "", corrupt(artifact.Encoders, err)
	}
	return codecs, "", nil
}

func encodeEncoders(codecs codec.Set, reg columns.Registry) (map[string][]byte, error) {
	enc, err := json.MarshalIndent(encodersDoc{RunID: reg.RunID, Encoders: codecs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode encoders: %w", err)
	}
	cols, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode column mappings: %w", err)
	}
	return map[string][]byte{artifact.Encoders: enc, artifact.ColumnMappings: cols}, nil
}

func corrupt(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, name, err)
}
