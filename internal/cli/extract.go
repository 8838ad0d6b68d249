package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/munsellkit/internal/batch"
	"github.com/jmylchreest/munsellkit/internal/convert"
	"github.com/jmylchreest/munsellkit/internal/image"
	"github.com/jmylchreest/munsellkit/internal/render"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		colours    int
		algorithm  string
		renotation bool
	)

	cmd := &cobra.Command{
		Use:   "extract IMAGE...",
		Short: "Extract dominant colours from images as Munsell notations",
		Long: `Extract the dominant colours of images and convert each to Munsell notation.

Images may be files, directories (scanned for images) or HTTPS URLs.
Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Eight dominant colours estimated with UP LAB
  munsellkit extract wallpaper.jpg --method uplab

  # Every image in a directory, k-means clustering, JSON output
  munsellkit extract ~/Pictures -c 4 --algorithm kmeans --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := image.NewExtractor(image.Algorithm(algorithm))
			if err != nil {
				return err
			}
			for _, arg := range args {
				if err := image.ValidateImagePath(arg); err != nil {
					return err
				}
			}
			paths, err := image.ExpandPaths(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no images found in %v", args)
			}

			ctx := cmdContext(cmd)
			loader := image.NewSmartLoader()
			job := &batch.Job{Path: "extract"}
			for _, path := range paths {
				img, err := loader.LoadContext(ctx, path)
				if err != nil {
					return fmt.Errorf("failed to load image %s: %w", path, err)
				}
				swatches, err := extractor.Extract(img, colours)
				if err != nil {
					return fmt.Errorf("failed to extract colours from %s: %w", path, err)
				}
				a.logger.Debug("extracted colours", "path", path, "algorithm", algorithm, "count", len(swatches))

				for _, s := range swatches {
					name := fmt.Sprintf("%.1f%%", s.Weight*100)
					if len(paths) > 1 {
						name = filepath.Base(path) + " " + name
					}
					job.Requests = append(job.Requests, convert.Request{
						Name:       name,
						From:       convert.SourceHex,
						Input:      s.Colour.Hex(),
						To:         convert.TargetMunsell,
						Method:     convert.Method(a.method(cmd)),
						Renotation: renotation,
					})
				}
			}

			runner := batch.NewRunner(a.converter(),
				batch.WithWorkers(a.cfg.Workers),
				batch.WithLogger(a.logger.Named("batch")))
			results := runner.Run(ctx, job)
			if err := render.Results(cmd.OutOrStdout(), results, a.renderOptions()); err != nil {
				return err
			}
			return failures(results)
		},
	}
	addMethodFlag(cmd)
	cmd.Flags().IntVarP(&colours, "colours", "c", 8, fmt.Sprintf("number of colours to extract (1-%d)", image.MaxColours))
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(image.AlgorithmQuantize), fmt.Sprintf("extraction algorithm %v", image.ValidAlgorithms()))
	cmd.Flags().BoolVar(&renotation, "renotation", false, "also report the nearest renotation grid colour")
	return cmd
}

// failures returns an error summarising failed results, nil if none failed.
func failures(results []convert.Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(results))
	}
	return nil
}

func newBatchCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch FILE.hcl",
		Short: "Run the conversions listed in an HCL job file",
		Long: `Run every conversion block of an HCL job file concurrently.

  defaults {
    method = "uplab"
  }

  conversion "navy" {
    from  = "rgb"
    input = [18, 52, 86]
  }

  conversion "grey" {
    from  = "munsell"
    input = "N5"
    to    = "xyy"
  }

Results are printed in file order. The command fails if any conversion failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := batch.Load(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}

			runner := batch.NewRunner(a.converter(),
				batch.WithWorkers(workers),
				batch.WithLogger(a.logger.Named("batch")))
			results := runner.Run(cmdContext(cmd), job)
			if err := render.Results(cmd.OutOrStdout(), results, a.renderOptions()); err != nil {
				return err
			}
			return failures(results)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent conversions (default: CPUs, at most 8)")
	return cmd
}
