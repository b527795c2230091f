package main

import (
	"context"
	"fmt"
	"io"

	"github.com/danmuck/pnsctl/internal/config"
	"github.com/danmuck/pnsctl/internal/pns"
	"github.com/danmuck/pnsctl/internal/pns/client"
	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "run <red> <amber> <green> <blue> <white> <buzzer>",
		Aliases: []string{"S"},
		Short:   "Set LED unit patterns and buzzer mode",
		Example: "  pnsctl run 1 0 0 0 0 0\n  pnsctl S blink-slow off off off no-change ring",
		Args:    cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := pns.ParseRunControl(args)
			if err != nil {
				return err
			}
			return withDevice(cmd, flags, func(ctx context.Context, c *client.Client) error {
				return c.RunControl(ctx, rc)
			})
		},
	}
}

func newClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Aliases: []string{"C"},
		Short:   "Turn off every LED unit and stop the buzzer",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(cmd, flags, func(ctx context.Context, c *client.Client) error {
				return c.Clear(ctx)
			})
		},
	}
}

func newGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "get",
		Aliases: []string{"G"},
		Short:   "Read LED unit and buzzer status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(cmd, flags, func(ctx context.Context, c *client.Client) error {
				s, err := c.GetData(ctx)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
}

var statusLabels = [5]string{"Red", "Amber", "Green", "Blue", "White"}

func printStatus(w io.Writer, s pns.Status) {
	fmt.Fprintln(w, "Response data for status acquisition command")
	for i, p := range s.LED {
		fmt.Fprintf(w, "LED %s pattern : %d (%s)\n", statusLabels[i], uint8(p), p)
	}
	fmt.Fprintf(w, "Buzzer Mode : %d (%s)\n", uint8(s.Buzzer), s.Buzzer)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate pnsctl config files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a starter config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[0], force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote config template to %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Parse and validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: device %s, length byte order %s\n", cfg.Address(), cfg.LengthByteOrder)
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
