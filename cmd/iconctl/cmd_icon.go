package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"iconswitch/internal/iconbridge"
	"iconswitch/internal/manifest"
	"iconswitch/internal/transport"

	"github.com/spf13/cobra"
)

// setCmd switches to a named alternate icon
var setCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Switch to the named alternate icon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return requestIconChange(cmd, &name)
	},
}

// resetCmd restores the primary icon
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the primary icon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestIconChange(cmd, nil)
	},
}

// variantsCmd lists the alternates declared in the local manifest
var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the alternate icons declared in the manifest",
	Args:  cobra.NoArgs,
	RunE:  runVariants,
}

func requestIconChange(cmd *cobra.Command, name *string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	conn, err := transport.Dial(ctx, cfg.HostURL, nil, logger)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.HostURL, err)
	}
	defer conn.Close()

	client := iconbridge.NewClient(conn,
		iconbridge.WithTimeout(cfg.RequestTimeout),
		iconbridge.WithLogger(logger))

	outcome := client.RequestIconChange(ctx, name)
	fmt.Fprintln(cmd.OutOrStdout(), outcome.String())
	if !outcome.OK() {
		return fmt.Errorf("icon change failed: %s", outcome.Code())
	}
	return nil
}

func runVariants(cmd *cobra.Command, args []string) error {
	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	primary := m.Primary
	if primary == "" {
		primary = "(primary)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\t%s\n", primary, m.PrimaryIcon)
	for _, name := range m.Names() {
		alt, _ := m.Lookup(name)
		fmt.Fprintf(out, "%s\t%s\n", alt.Name, alt.Icon)
	}
	return nil
}
