// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/csl-quickstatements/internal/compile"
	"github.com/pdiddy/csl-quickstatements/internal/csl"
	"github.com/pdiddy/csl-quickstatements/internal/orcid"
	"github.com/pdiddy/csl-quickstatements/internal/store"
	"github.com/pdiddy/csl-quickstatements/internal/wikibase"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

var compileCmd = &cobra.Command{
	Use:   "compile [files...]",
	Short: "Compile CSL records into a QuickStatements script",
	Long: `Compile reads CSL-JSON or CSL-YAML records from the given files, or from
stdin when none are given, and writes a QuickStatements script. Records the
knowledge base already holds (matched by DOI) only receive the authorship
and citation statements they are missing.`,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindCompileFlags(cmd) },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd, args, false)
	},
}

var authorsCmd = &cobra.Command{
	Use:   "authors [files...]",
	Short: "Write researcher items for authors not yet in the knowledge base",
	Long: `Authors compiles in author-only mode: one CREATE block per distinct ORCID
among the records' authors that has no item yet, with label, description,
researcher class and ORCID statement.`,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindCompileFlags(cmd) },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd, args, true)
	},
}

func init() {
	addCompileFlags(compileCmd)
	compileCmd.Flags().Bool("authors-only", false, "write researcher items instead of citation items")
	addCompileFlags(authorsCmd)

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(authorsCmd)
}

func runCompile(cmd *cobra.Command, args []string, authorsOnly bool) error {
	rc, err := loadRunConfig()
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("authors-only"); f != nil && f.Changed {
		rc.compile.AuthorsOnly, _ = cmd.Flags().GetBool("authors-only")
	}
	if authorsOnly {
		rc.compile.AuthorsOnly = true
	}

	records, err := readRecords(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &compile.Compiler{
		Mapping:     rc.mapping,
		Config:      rc.compile,
		Concurrency: rc.registry.Concurrency,
		Lookup:      wikibase.NewClient(rc.wikibase),
		Instance:    rc.wikibase.Instance,
		Log:         logOutput,
	}

	if rc.compile.QueryRegistry {
		var cache orcid.PersonCache
		if rc.registry.PersonCache != "" {
			s, err := store.Open(rc.registry.PersonCache)
			if err != nil {
				fmt.Fprintf(logOutput, "warning: person cache disabled: %v\n", err)
			} else {
				defer s.Close()
				cache = s
			}
		}
		c.Registry = orcid.NewClient(rc.registry, cache, logOutput)
	}

	out, closeOut, err := openOutput(rc.output)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)

	sum, err := c.Compile(ctx, records, bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	printSummary(os.Stderr, sum, rc.compile.AuthorsOnly)
	return nil
}

// readRecords loads CSL records from files, or from stdin when there are
// none.
func readRecords(paths []string) ([]types.Record, error) {
	if len(paths) == 0 {
		return csl.Load(os.Stdin)
	}
	return csl.LoadFiles(paths)
}

// openOutput returns stdout for an empty path, or the created file.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

func printSummary(w io.Writer, sum compile.Summary, authorsOnly bool) {
	bold := color.New(color.Bold)
	if authorsOnly {
		bold.Fprintf(w, "%d records, %d researchers to create", sum.Records, sum.Authors)
	} else {
		bold.Fprintf(w, "%d records: ", sum.Records)
		color.New(color.FgGreen).Fprintf(w, "%d created", sum.Created)
		fmt.Fprint(w, ", ")
		color.New(color.FgCyan).Fprintf(w, "%d updated", sum.Updated)
		fmt.Fprint(w, ", ")
		color.New(color.FgYellow).Fprintf(w, "%d skipped", sum.Skipped)
	}
	if sum.Resolved > 0 {
		fmt.Fprintf(w, " (%d ORCIDs found)", sum.Resolved)
	}
	fmt.Fprintln(w)
	if !sum.LookupOK() {
		color.New(color.FgRed).Fprintf(w, "knowledge-base lookup failed: %s\n", sum.LookupError)
	}
	if len(sum.Known) > 0 {
		fmt.Fprint(w, "known:")
		for _, c := range wikibase.Categories {
			if n, ok := sum.Known[c.String()]; ok {
				fmt.Fprintf(w, " %s=%d", c, n)
			}
		}
		fmt.Fprintln(w)
	}
}
