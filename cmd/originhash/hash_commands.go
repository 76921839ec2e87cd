package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"originhash/internal/batch"
	"originhash/internal/logging"
)

func newHashCommand(ctx *commandContext) *cobra.Command {
	var raw, list bool
	cmd := &cobra.Command{
		Use:   "hash <path>...",
		Short: "Fingerprint each path, detecting folders and archives",
		Long: "Fingerprint each path. Directories are hashed as folders and other files as zip archives.\n" +
			"Use --raw to hash plain file bytes instead.",
		Args: requireSources,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := batch.KindAuto
			if raw {
				kind = batch.KindFile
			}
			if list {
				if raw {
					return newUsageError(errors.New("--list cannot be combined with --raw"))
				}
				return runList(cmd, ctx, kind, args)
			}
			return runHash(cmd, ctx, kind, args)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Hash the raw bytes of each file")
	cmd.Flags().BoolVar(&list, "list", false, "Print entries in canonical order without hashing")
	return cmd
}

func newFolderCommand(ctx *commandContext) *cobra.Command {
	return newSourceCommand(ctx, batch.KindFolder, "folder <dir>...", "Fingerprint directory trees")
}

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	return newSourceCommand(ctx, batch.KindArchive, "archive <zip>...", "Fingerprint zip archives")
}

func newSourceCommand(ctx *commandContext, kind batch.Kind, use, short string) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  requireSources,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return runList(cmd, ctx, kind, args)
			}
			return runHash(cmd, ctx, kind, args)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "Print entries in canonical order without hashing")
	return cmd
}

func newFileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>...",
		Short: "MD5 of the raw bytes of each file",
		Args:  requireSources,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(cmd, ctx, batch.KindFile, args)
		},
	}
}

func requireSources(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return newUsageError(errors.New("at least one path is required"))
	}
	return nil
}

func runHash(cmd *cobra.Command, ctx *commandContext, kind batch.Kind, paths []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	runCtx := logging.WithRunID(cmd.Context(), ctx.runID)
	hasher, err := ctx.newHasher(logging.WithContext(runCtx, logger))
	if err != nil {
		return err
	}
	scheme, err := batch.ParseScheme(cfg.Hashing.Scheme)
	if err != nil {
		return newUsageError(err)
	}

	reqs := make([]batch.Request, 0, len(paths))
	for _, path := range paths {
		reqs = append(reqs, batch.Request{Path: path, Kind: kind})
	}

	runner := batch.NewRunner(batch.Options{
		Hasher:    hasher,
		Jobs:      cfg.Hashing.Jobs,
		Scheme:    scheme,
		KeepGoing: ctx.keepGoing(),
		Logger:    logger,
	})
	results, err := runner.Run(runCtx, reqs)
	if err != nil {
		return err
	}

	view := resultView{
		RunID:   ctx.runID,
		Scheme:  scheme,
		Results: results,
	}
	if err := renderResults(cmd, cfg, view); err != nil {
		return err
	}
	for _, res := range results {
		if res.Err != nil {
			return reportedError{cause: res.Err}
		}
	}
	return nil
}

// failureLine formats a per-source error for stderr.
func failureLine(res batch.Result) string {
	return fmt.Sprintf("originhash: %s: %v", res.Path, res.Err)
}
