package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizupe/appliedml/dataset"
	"github.com/mizupe/appliedml/pkg/errors"
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <pima|adult|fashion-mnist>",
		Short: "Download a built-in dataset into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout)
			defer cancel()

			switch args[0] {
			case "pima":
				path, err := dataset.Fetch(ctx, dataset.PimaURL, cfg.CacheDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			case "adult":
				path, err := dataset.Fetch(ctx, dataset.AdultURL, cfg.CacheDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			case "fashion-mnist":
				paths, err := dataset.FetchAll(ctx, dataset.FashionMNISTSpecs(), cfg.CacheDir)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
			default:
				return errors.NewValueError("fetch", fmt.Sprintf("unknown dataset %q", args[0]))
			}
			return nil
		},
	}
	return cmd
}
