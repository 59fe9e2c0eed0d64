// Command gnatfinder computes the second-order causal activity graph of a
// spiking neural network from a recorded spike train and its physical
// synaptic connectivity.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wizardbeard/gnatfinder/internal/emit"
	"github.com/wizardbeard/gnatfinder/internal/gnat"
	"github.com/wizardbeard/gnatfinder/internal/inputs"
	"github.com/wizardbeard/gnatfinder/internal/raster"
	"github.com/wizardbeard/gnatfinder/internal/report"
	"github.com/wizardbeard/gnatfinder/internal/runconfig"
	"github.com/wizardbeard/gnatfinder/internal/synnet"
)

const defaultOutPath = "./gnat2_out.txt"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "gnatfinder <n_cells> <spike_file> <network_file> <tau> <thresh> <c_radius>",
		Short: "Compute the second-order causal activity graph of a spiking network",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, configPath, outPath, workers)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML overlay supplying defaults for tau/thresh/c_radius/workers")
	cmd.Flags().StringVar(&outPath, "out", defaultOutPath, "output file path")
	cmd.Flags().IntVar(&workers, "workers", 1, "number of Phase-2 workers (1 = single-threaded)")

	return cmd
}

func run(args []string, configPath, outPath string, workers int) error {
	var overlay runconfig.Overlay
	if configPath != "" {
		var err error
		overlay, err = runconfig.Load(configPath)
		if err != nil {
			return err
		}
	}

	nCells, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("gnatfinder: invalid n_cells %q: %w", args[0], err)
	}
	spikeFile := args[1]
	networkFile := args[2]

	tau, err := parseFloatArg(args[3], overlay.Tau)
	if err != nil {
		return fmt.Errorf("gnatfinder: invalid tau %q: %w", args[3], err)
	}
	thresh, err := parseFloatArg(args[4], overlay.Thresh)
	if err != nil {
		return fmt.Errorf("gnatfinder: invalid thresh %q: %w", args[4], err)
	}
	cRadius, err := parseFloatArg(args[5], overlay.CRadius)
	if err != nil {
		return fmt.Errorf("gnatfinder: invalid c_radius %q: %w", args[5], err)
	}

	if overlay.Workers != nil && workers == 1 {
		workers = *overlay.Workers
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if overlay.OutPath != nil && outPath == defaultOutPath {
		outPath = *overlay.OutPath
	}

	r, net, err := loadInputs(uint32(nCells), spikeFile, networkFile)
	if err != nil {
		return err
	}

	pipeline, err := gnat.Build(r, net)
	if err != nil {
		return fmt.Errorf("gnatfinder: building quadtrees: %w", err)
	}

	rep := report.New(os.Stderr)
	params := gnat.Params{Tau: tau, Thresh: thresh, CRadius: cRadius}

	sinkFactory := func(workerID int) (*emit.Sink, error) {
		return emit.Open(shardPath(outPath, workers, workerID))
	}

	nCellsInt := int(r.NCells())
	edges, runErr := pipeline.Run(sinkFactory, params, workers, func(done, total int, edgesSoFar int64) {
		rep.Progress(done, total, edgesSoFar)
	})
	rep.Summary(nCellsInt, edges)

	if workers > 1 {
		if mergeErr := mergeShards(outPath, workers); mergeErr != nil {
			if runErr != nil {
				return fmt.Errorf("gnatfinder: %w", runErr)
			}
			return fmt.Errorf("gnatfinder: merging worker output: %w", mergeErr)
		}
	}

	if runErr != nil {
		return fmt.Errorf("gnatfinder: %w", runErr)
	}
	return nil
}

// shardPath returns the output path worker workerID should write to: the
// fixed out path itself when running single-threaded, otherwise a
// per-worker shard that mergeShards later concatenates into it.
func shardPath(outPath string, workers, workerID int) string {
	if workers <= 1 {
		return outPath
	}
	return fmt.Sprintf("%s.w%d", outPath, workerID)
}

// mergeShards concatenates each worker's shard, in worker-index order,
// into the single fixed output path, then removes the shards. This keeps
// the on-disk output contract identical regardless of how many workers
// ran: callers only ever see outPath.
func mergeShards(outPath string, workers int) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating merged output %s: %w", outPath, err)
	}
	defer out.Close()

	shardPaths := make([]string, workers)
	for w := 0; w < workers; w++ {
		shardPaths[w] = shardPath(outPath, workers, w)
	}

	for _, path := range shardPaths {
		if err := appendShard(out, path); err != nil {
			return err
		}
	}
	for _, path := range shardPaths {
		os.Remove(path)
	}
	return nil
}

func appendShard(out *os.File, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening shard %s: %w", path, err)
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying shard %s: %w", path, err)
	}
	return nil
}

func parseFloatArg(raw string, fallback *float32) (float32, error) {
	if raw == "-" && fallback != nil {
		return *fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func loadInputs(nCells uint32, spikeFile, networkFile string) (*raster.Raster, *synnet.Network, error) {
	spikesFh, err := os.Open(spikeFile)
	if err != nil {
		return nil, nil, fmt.Errorf("gnatfinder: opening spike file: %w", err)
	}
	defer spikesFh.Close()

	spikes, err := inputs.ReadSpikes(spikesFh, spikeFile)
	if err != nil {
		return nil, nil, err
	}

	r := raster.New(nCells)
	for _, sp := range spikes {
		if err := r.Append(sp); err != nil {
			return nil, nil, fmt.Errorf("gnatfinder: %w", err)
		}
	}
	r.Finalize()

	netFh, err := os.Open(networkFile)
	if err != nil {
		return nil, nil, fmt.Errorf("gnatfinder: opening network file: %w", err)
	}
	defer netFh.Close()

	syns, err := inputs.ReadSynapses(netFh, networkFile)
	if err != nil {
		return nil, nil, err
	}

	net := synnet.New(uint64(nCells))
	for _, syn := range syns {
		if err := net.AddSynapse(syn); err != nil {
			return nil, nil, fmt.Errorf("gnatfinder: %w", err)
		}
	}

	return r, net, nil
}
