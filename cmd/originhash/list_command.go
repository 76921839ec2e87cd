package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"originhash/internal/batch"
	"originhash/internal/origin"
)

type listing struct {
	Path    string         `json:"path"`
	Kind    string         `json:"kind"`
	Entries []listingEntry `json:"entries"`
}

// listingEntry pairs the hashed key with the name as stored in the source.
type listingEntry struct {
	Key  string `json:"key"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// runList prints every entry of each source in the order it would be hashed.
func runList(cmd *cobra.Command, ctx *commandContext, kind batch.Kind, paths []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	listings := make([]listing, 0, len(paths))
	for _, path := range paths {
		resolved, err := batch.Resolve(path, kind)
		if err != nil {
			return err
		}
		var src origin.Source
		switch resolved {
		case batch.KindFolder:
			src, err = origin.OpenFolder(path,
				origin.WithSymlinks(cfg.Hashing.FollowSymlinks),
				origin.WithFolderLogger(logger),
			)
		case batch.KindArchive:
			src, err = origin.OpenArchive(path)
		default:
			return newUsageError(fmt.Errorf("cannot list entries of a %s source", resolved))
		}
		if err != nil {
			return err
		}
		entries, err := src.Entries(cmd.Context())
		src.Close()
		if err != nil {
			return err
		}
		origin.SortEntries(entries)

		item := listing{Path: path, Kind: src.Kind(), Entries: make([]listingEntry, 0, len(entries))}
		for _, entry := range entries {
			item.Entries = append(item.Entries, listingEntry{Key: entry.Key(), Path: entry.Path(), Size: entry.Size()})
		}
		listings = append(listings, item)
	}

	switch cfg.Output.Format {
	case "json":
		return writeJSON(cmd, listings)
	case "table":
		for _, item := range listings {
			fmt.Fprintln(cmd.OutOrStdout(), renderListingTable(item))
		}
		return nil
	}
	out := cmd.OutOrStdout()
	for i, item := range listings {
		if len(listings) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", item.Path)
		}
		for _, entry := range item.Entries {
			fmt.Fprintln(out, entry.Key)
		}
	}
	return nil
}

func renderListingTable(item listing) string {
	rows := make([][]string, 0, len(item.Entries))
	for i, entry := range item.Entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), entry.Key, entry.Path, humanBytes(entry.Size)})
	}
	return item.Path + "\n" + renderTable(
		[]string{"#", "Key", "Stored Name", "Size"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}
