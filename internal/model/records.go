package model

// Run-archive records. These are written after a run finishes; the
// evolution loop itself never reads them back.

type RunMeta struct {
	VersionedRecord
	RunID       string  `json:"run_id"`
	ScapeName   string  `json:"scape_name"`
	Population  int     `json:"population"`
	Survivors   int     `json:"survivors"`
	Generations int     `json:"generations"`
	Seed        int64   `json:"seed"`
	BestPeak    float64 `json:"best_peak"`
}

// GenerationDiagnostics summarizes one generation's peak-stress spread.
// Best is the lowest peak (fitness is minimized).
type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	BestPeak    float64 `json:"best_peak"`
	MeanPeak    float64 `json:"mean_peak"`
	WorstPeak   float64 `json:"worst_peak"`
	Collapsed   int     `json:"collapsed"`
	Evaluations int     `json:"evaluations"`
}

type TopGenomeRecord struct {
	VersionedRecord
	Rank   int     `json:"rank"`
	Peak   float64 `json:"peak"`
	Genome Genome  `json:"genome"`
}
