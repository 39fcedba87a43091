// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/csl-quickstatements/internal/compile"
)

var queryCmd = &cobra.Command{
	Use:   "query [files...]",
	Short: "Print the knowledge-base lookup query without running it",
	Long: `Query prints the batched SPARQL query that compile would send for the
given records. ORCIDs that the registry lookup would add are not included.`,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindCompileFlags(cmd) },
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadRunConfig()
		if err != nil {
			return err
		}
		records, err := readRecords(args)
		if err != nil {
			return err
		}

		c := &compile.Compiler{Mapping: rc.mapping, Config: rc.compile, Instance: rc.wikibase.Instance, Log: logOutput}
		q := c.Query(records)
		if q == "" {
			fmt.Fprintln(os.Stderr, "No identifiers to look up.")
			return nil
		}
		fmt.Println(q)
		return nil
	},
}

func init() {
	addCompileFlags(queryCmd)
	rootCmd.AddCommand(queryCmd)
}
