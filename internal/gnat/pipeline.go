// Package gnat is the orchestrator: it builds one quadtree per neuron from
// that neuron's spike-pair set, then drives the nested range-query
// enumeration that streams accepted causal matches to an edge sink.
package gnat

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wizardbeard/gnatfinder/internal/causal"
	"github.com/wizardbeard/gnatfinder/internal/emit"
	"github.com/wizardbeard/gnatfinder/internal/geom"
	"github.com/wizardbeard/gnatfinder/internal/quadtree"
	"github.com/wizardbeard/gnatfinder/internal/raster"
	"github.com/wizardbeard/gnatfinder/internal/spike"
	"github.com/wizardbeard/gnatfinder/internal/synnet"
)

// Params bundles the three run parameters that govern causal-edge
// acceptance: the per-synapse time constant, the acceptance threshold, and
// the query-box half-width.
type Params struct {
	Tau     float32
	Thresh  float32
	CRadius float32
}

// Pipeline owns the read-only state built once in Phase 1 — the raster,
// the network, and the per-neuron quadtree array — and drives Phase 2's
// enumeration against it. It holds that state by reference rather than as
// process-wide globals.
type Pipeline struct {
	raster  *raster.Raster
	network *synnet.Network
	qtrees  []*quadtree.Tree
}

// ProgressFunc is invoked by Run after every 10th postsynaptic neuron
// completes. It receives the number of cells processed so far, the total,
// and the number of edges emitted so far across all workers.
type ProgressFunc func(done, total int, edges int64)

// rootMargin pads the shared root box beyond [t_min, t_max] so that a
// pair coordinate sitting exactly on t_min or t_max — which every run's
// extreme spikes do — lands strictly inside the box rather than exactly on
// its boundary. geom.Box.Contains is strict, so a box sized to exactly
// [t_min, t_max] would drop every pair touching that boundary.
const rootMargin = 1

// Build is Phase 1: for each neuron, generate its spike-pair set from the
// raster and bulk-insert it into a fresh quadtree sharing a single
// top-level boundary box centered on (t_min+t_max)/2 with half-width
// (t_max-t_min)/2 + rootMargin, so every coordinate in [t_min, t_max] is
// strictly interior. r must already be finalized.
func Build(r *raster.Raster, net *synnet.Network) (*Pipeline, error) {
	if r.NCells() != uint32(net.NCells()) {
		return nil, fmt.Errorf("gnat: raster population %d does not match network population %d", r.NCells(), net.NCells())
	}

	center := float64(r.TMax()+r.TMin()) / 2
	halfWidth := float64(r.TMax()-r.TMin())/2 + rootMargin
	root := geom.Box{CX: center, CY: center, W2: halfWidth}

	qtrees := make([]*quadtree.Tree, r.NCells())
	for id := uint32(0); id < r.NCells(); id++ {
		tree := quadtree.New(root)
		pairs := r.Pairs(id)
		if dropped := tree.InsertAll(pairs); len(dropped) > 0 {
			return nil, fmt.Errorf("gnat: neuron %d: %d spike pairs fell outside the root boundary", id, len(dropped))
		}
		qtrees[id] = tree
	}

	return &Pipeline{raster: r, network: net, qtrees: qtrees}, nil
}

// QuadtreeFor returns the quadtree built for neuron id, or nil if id is
// out of range.
func (p *Pipeline) QuadtreeFor(id uint32) *quadtree.Tree {
	if int(id) >= len(p.qtrees) {
		return nil
	}
	return p.qtrees[id]
}

// Run is Phase 2: for every postsynaptic neuron v, for every spike pair of
// v, for every presynaptic synapse u->v, query u's quadtree with a square
// of half-width c_radius centered on the post-pair's coordinates, skip any
// candidate that does not lie strictly inside that square, and apply the
// causal edge predicate to the rest; accepted matches are written
// to sink. workers controls how many postsynaptic neurons are processed
// concurrently; workers<=1 runs strictly single-threaded in raster order.
// SinkFactory opens the edge sink for worker index workerID (always 0 when
// running single-threaded). Callers that shard output across workers use
// workerID to pick a distinct path; callers that want a single merged
// output file should ignore it and always open the same path, as long as
// only one worker is ever used.
type SinkFactory func(workerID int) (*emit.Sink, error)

func (p *Pipeline) Run(sinkFactory SinkFactory, params Params, workers int, progress ProgressFunc) (int64, error) {
	nCells := int(p.raster.NCells())
	if workers < 1 {
		workers = 1
	}

	var edges atomic.Int64

	if workers == 1 {
		sink, err := sinkFactory(0)
		if err != nil {
			return 0, err
		}
		defer sink.Close()
		for v := 0; v < nCells; v++ {
			if err := p.processCell(uint32(v), sink, params, &edges); err != nil {
				return edges.Load(), err
			}
			reportProgress(progress, v+1, nCells, edges.Load())
		}
		return edges.Load(), nil
	}

	err := p.runParallel(sinkFactory, params, workers, nCells, progress, &edges)
	return edges.Load(), err
}

func reportProgress(progress ProgressFunc, done, total int, edges int64) {
	if progress != nil && (done%10 == 0 || done == total) {
		progress(done, total, edges)
	}
}

// runParallel forks a static partition of [0, nCells) across workers.
// Each worker owns a private sink from sinkFactory; sinks share no state,
// so no mutex guards the hot path. Output line ordering across workers is
// not a contract.
func (p *Pipeline) runParallel(sinkFactory SinkFactory, params Params, workers, nCells int, progress ProgressFunc, edges *atomic.Int64) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)

	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink, err := sinkFactory(w)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			defer sink.Close()

			for v := w; v < nCells; v += workers {
				if err := p.processCell(uint32(v), sink, params, edges); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				mu.Lock()
				done++
				reportProgress(progress, done, nCells, edges.Load())
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return firstErr
}

// processCell runs the post-pair / presynaptic-synapse / quadtree-query
// nested loop for a single postsynaptic neuron v. edges is incremented
// once per edge actually written to sink, so callers can report a running
// total regardless of how many workers are writing concurrently.
func (p *Pipeline) processCell(v uint32, sink *emit.Sink, params Params, edges *atomic.Int64) error {
	postPairs := p.raster.Pairs(v)
	presyns := p.network.Presynaptic(uint64(v))
	if len(presyns) == 0 {
		return nil
	}

	for _, postPair := range postPairs {
		cx, cy := postPair.Point()
		region := geom.Box{CX: cx, CY: cy, W2: float64(params.CRadius)}

		for _, syn := range presyns {
			tree := p.QuadtreeFor(uint32(syn.Src))
			if tree == nil {
				continue
			}

			var emitErr error
			tree.Query(region, func(prePair spike.Pair) bool {
				// Query visits every pair of any leaf touching region;
				// c_radius gating needs the pair itself inside it.
				if !region.Contains(prePair.Point()) {
					return true
				}
				if causal.Accept(prePair, postPair, syn, params.Tau, params.Thresh) {
					if err := sink.Add(emit.Edge{Pre: prePair, Post: postPair, CDRatio: 1}); err != nil {
						emitErr = err
						return false
					}
					edges.Add(1)
				}
				return true
			})
			if emitErr != nil {
				return emitErr
			}
		}
	}
	return nil
}
