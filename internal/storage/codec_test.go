package storage

import (
	"errors"
	"testing"

	"pontifex/internal/genotype"
	"pontifex/internal/model"
)

func TestGenomeCodecRoundtrip(t *testing.T) {
	genome := genotype.ReferenceSpan()
	genome.VersionedRecord = CurrentVersion()

	data, err := EncodeGenome(genome)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeGenome(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != genome.ID || len(decoded.Edges) != 3 || len(decoded.Static) != 2 {
		t.Fatalf("genome lost in roundtrip: %+v", decoded)
	}
	if decoded.Edges[0].Key != model.MakeEdgeKey(1, 2) || decoded.Edges[0].Role != model.RoleRoad {
		t.Fatalf("edge lost in roundtrip: %+v", decoded.Edges[0])
	}
}

func TestDecodeGenomeRejectsVersionMismatch(t *testing.T) {
	genome := genotype.ReferenceSpan()
	genome.SchemaVersion = CurrentSchemaVersion + 1
	genome.CodecVersion = CurrentCodecVersion

	data, err := EncodeGenome(genome)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeGenome(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeTopGenomesChecksEveryRecord(t *testing.T) {
	good := model.TopGenomeRecord{VersionedRecord: CurrentVersion(), Rank: 1, Peak: 10, Genome: genotype.ReferenceSpan()}
	stale := good
	stale.CodecVersion = CurrentCodecVersion + 1
	stale.Rank = 2

	data, err := EncodeTopGenomes([]model.TopGenomeRecord{good, stale})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeTopGenomes(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestRunMetaCodecRoundtrip(t *testing.T) {
	meta := model.RunMeta{
		VersionedRecord: CurrentVersion(),
		RunID:           "run-7",
		ScapeName:       "rolling-load",
		Population:      12,
		Survivors:       5,
		Generations:     10,
		Seed:            7,
		BestPeak:        321.5,
	}
	data, err := EncodeRunMeta(meta)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRunMeta(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != meta {
		t.Fatalf("meta lost in roundtrip: %+v", decoded)
	}
}
