package evo

import (
	"container/heap"
	"fmt"
	"sort"

	"pontifex/internal/model"
	"pontifex/internal/scape"
)

// Record is one evaluated genome.
type Record struct {
	Genome model.Genome
	Peak   float64
	Trace  scape.Trace
}

// SurvivorBoard keeps the K lowest-peak records seen across all generations.
// Internally a bounded max-heap: the worst kept record sits at the top, so
// admitting a better candidate is a single replace.
type SurvivorBoard struct {
	capacity int
	records  recordHeap
}

func NewSurvivorBoard(capacity int) (*SurvivorBoard, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("survivor board capacity must be > 0")
	}
	return &SurvivorBoard{capacity: capacity}, nil
}

func (b *SurvivorBoard) Capacity() int { return b.capacity }
func (b *SurvivorBoard) Len() int      { return len(b.records) }

// Add admits the record if the board has room or the record beats the worst
// kept peak. Anything else is dropped immediately; the board never grows
// past its capacity.
func (b *SurvivorBoard) Add(rec Record) {
	if len(b.records) < b.capacity {
		heap.Push(&b.records, rec)
		return
	}
	if rec.Peak >= b.records[0].Peak {
		return
	}
	b.records[0] = rec
	heap.Fix(&b.records, 0)
}

// Records returns the kept survivors ordered best first (ascending peak,
// ties by genome id for determinism).
func (b *SurvivorBoard) Records() []Record {
	out := make([]Record, len(b.records))
	copy(out, b.records)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Peak != out[j].Peak {
			return out[i].Peak < out[j].Peak
		}
		return out[i].Genome.ID < out[j].Genome.ID
	})
	return out
}

func (b *SurvivorBoard) Best() (Record, bool) {
	if len(b.records) == 0 {
		return Record{}, false
	}
	records := b.Records()
	return records[0], true
}

type recordHeap []Record

func (h recordHeap) Len() int            { return len(h) }
func (h recordHeap) Less(i, j int) bool  { return h[i].Peak > h[j].Peak }
func (h recordHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *recordHeap) Push(x any)         { *h = append(*h, x.(Record)) }
func (h *recordHeap) Pop() any {
	old := *h
	n := len(old)
	rec := old[n-1]
	*h = old[:n-1]
	return rec
}
