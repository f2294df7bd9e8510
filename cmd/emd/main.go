// Command emd acquires a full image of the host's physical memory via an
// eBPF uprobe trampoline, and streams it to a file or stdout with optional
// compression and LiME framing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memdump/emd/internal/acquire"
	"github.com/memdump/emd/internal/config"
	"github.com/memdump/emd/internal/discovery"
	"github.com/memdump/emd/internal/emderr"
	"github.com/memdump/emd/internal/emdlog"
	"github.com/memdump/emd/internal/preflight"
	"github.com/memdump/emd/internal/probe"
	"github.com/memdump/emd/internal/progress"
	"github.com/memdump/emd/internal/sink"
	"github.com/memdump/emd/internal/trampoline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Config{OutputFormat: config.OutputFormatLiME}

	root := &cobra.Command{
		Use:           "emd",
		Short:         "Acquire a physical memory image via an eBPF uprobe trampoline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cfg)
		},
	}

	var compress, outputFormat string
	root.Flags().StringVarP(&cfg.OutputFile, "outputfile", "o", "", "file to dump memory to")
	root.Flags().BoolVarP(&cfg.UseStdout, "stdout", "s", false, "dump memory to stdout")
	root.Flags().StringVarP(&cfg.LogLevel, "loglevel", "l", "info", "log level: error, warn, info, debug, trace")
	root.Flags().StringVar(&compress, "compress", "none", "compression: none, zstd, lz4")
	root.Flags().StringVar(&outputFormat, "output-format", "lime", "output format: raw, lime")
	root.Flags().BoolVar(&cfg.ProgressBar, "progress-bar", false, "render a progress bar on stderr")

	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg.Compress = compress
		cfg.OutputFormat = config.OutputFormat(outputFormat)
		return cfg.Validate()
	}

	if err := root.Execute(); err != nil {
		emdlog.Errorf("%s", err)
		return emderr.ExitCode(err)
	}
	return 0
}

func execute(cfg config.Config) error {
	if err := emdlog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	emdlog.Infof("checking capabilities")
	if err := preflight.CheckCapabilities(); err != nil {
		return err
	}
	preflight.RaiseMemlockLimit()

	emdlog.Infof("loading eBPF probe")
	bridge, err := probe.Load()
	if err != nil {
		return err
	}
	defer bridge.Close()

	emdlog.Infof("running discovery")
	plan, err := discovery.Discover(discovery.DefaultPaths())
	if err != nil {
		return fmt.Errorf("%w: %s", emderr.ErrDiscovery, err)
	}
	if plan.KASLRAssumedDisabled {
		emdlog.Warnf("no page_offset_base symbol found; assuming KASLR is disabled and using direct-map base 0 — verify this holds for the target kernel before trusting the image")
	}
	emdlog.Infof("total System RAM to dump: %d bytes across %d ranges", plan.TotalBytes, len(plan.Ranges))

	compression, err := sink.ParseCompression(cfg.Compress)
	if err != nil {
		return fmt.Errorf("%w: %s", emderr.ErrSink, err)
	}

	outPath := cfg.OutputFile
	w, err := sink.Open(outPath, compression)
	if err != nil {
		return err
	}

	bar := progress.New(os.Stderr, plan.TotalBytes, cfg.ProgressBar)

	framing := acquire.FramingRaw
	if cfg.OutputFormat == config.OutputFormatLiME {
		framing = acquire.FramingLiME
	}

	driver := &acquire.Driver{
		Queue:      probe.NewMapQueue(bridge),
		Trampoline: trampoline.Call,
		Framing:    framing,
	}

	progressWriter := &countingWriter{w: w, bar: bar}
	gaps, err := driver.Run(plan, progressWriter)
	bar.Done()
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(gaps) > 0 {
		emdlog.Warnf("dump completed with %d unreadable chunk(s)", len(gaps))
	} else {
		emdlog.Infof("dump completed successfully")
	}
	return nil
}

// countingWriter feeds every write through to the sink while advancing
// the progress bar, so the driver doesn't need to know about progress
// rendering at all.
type countingWriter struct {
	w   *sink.Writer
	bar *progress.Bar
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.bar.Add(uint64(n))
	return n, err
}
