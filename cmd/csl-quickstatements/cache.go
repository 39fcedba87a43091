// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/csl-quickstatements/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the ORCID person cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached ORCID person",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openPersonCache(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Clear(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cached persons.\n", n)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many ORCID persons are cached",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openPersonCache(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%d cached persons in %s\n", n, viper.GetString("registry.person_cache"))
		return nil
	},
}

func openPersonCache(cmd *cobra.Command) (*store.Store, error) {
	if err := viper.BindPFlag("registry.person_cache", cmd.Flags().Lookup("person-cache")); err != nil {
		return nil, err
	}
	path := viper.GetString("registry.person_cache")
	if path == "" {
		return nil, fmt.Errorf("no person cache configured")
	}
	return store.Open(path)
}

func init() {
	for _, c := range []*cobra.Command{cacheClearCmd, cacheStatsCmd} {
		c.Flags().String("person-cache", "", "SQLite file caching ORCID person lookups")
		cacheCmd.AddCommand(c)
	}
	rootCmd.AddCommand(cacheCmd)
}
