package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jky-sys/Screener-3.0/internal/cache"
	"github.com/jky-sys/Screener-3.0/internal/symbols"
)

func newUniversesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "universes",
		Short: "List the available stock universes",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"ID", "Description", "Static Symbols"}),
			)
			for _, u := range symbols.Universes {
				table.Append([]string{string(u), u.Description(), fmt.Sprintf("%d", len(symbols.GetUniverse(u)))})
			}
			table.Render()
			return nil
		},
	}
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the candle cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired entries from the SQLite cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(context.Background())
			if err != nil {
				return err
			}
			defer a.Close()

			store, ok := a.store.(*cache.SQLiteStore)
			if !ok {
				return fmt.Errorf("purge needs the sqlite cache backend (configured: %s)", a.cfg.Cache.Backend)
			}
			n, err := store.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d expired entries\n", n)
			return nil
		},
	})
	return cmd
}
