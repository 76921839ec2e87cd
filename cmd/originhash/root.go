package main

import (
	"github.com/spf13/cobra"
)

// globalFlags holds persistent flags that override configuration values.
type globalFlags struct {
	config         string
	format         string
	color          string
	scheme         string
	jobs           int
	chunkSizeMiB   int
	followSymlinks bool
	keepGoing      bool
	logLevel       string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "originhash",
		Short:         "Order-independent fingerprints of folders and zip archives",
		Long:          "originhash computes an MD5 origin fingerprint over the files of a folder or zip archive.\nThe same set of files yields the same fingerprint regardless of container, order or metadata.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.bindFlags(cmd)
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newUsageError(err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVarP(&flags.format, "format", "o", "", "Output format: text, table or json")
	pf.StringVar(&flags.color, "color", "", "Colorize output: auto, always or never")
	pf.StringVar(&flags.scheme, "scheme", "", "Digest scheme for folders and archives: origin or h1")
	pf.IntVarP(&flags.jobs, "jobs", "j", 0, "Sources hashed in parallel (0 = one per CPU)")
	pf.IntVar(&flags.chunkSizeMiB, "chunk-size", 0, "Streaming read size in MiB")
	pf.BoolVar(&flags.followSymlinks, "follow-symlinks", true, "Include symlinked files found inside folders")
	pf.BoolVarP(&flags.keepGoing, "keep-going", "k", false, "Report failed sources and continue with the rest")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newHashCommand(ctx))
	rootCmd.AddCommand(newFolderCommand(ctx))
	rootCmd.AddCommand(newArchiveCommand(ctx))
	rootCmd.AddCommand(newFileCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
