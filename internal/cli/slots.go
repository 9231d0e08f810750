package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rmarques/leadchat/internal/api"
	"github.com/rmarques/leadchat/internal/config"
	"github.com/rmarques/leadchat/internal/session"
	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	var (
		rangeStart string
		rangeEnd   string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List open meeting slots from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			kv := openKV(cfg)
			identity := session.NewIdentityManager(kv, log)
			client := api.NewHTTPClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.TimeoutSeconds)*time.Second)
			defer cancel()

			slots, err := client.Slots(ctx, identity.GetOrCreate(), rangeStart, rangeEnd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(slots) == 0 {
				fmt.Fprintln(out, "no open slots")
				return nil
			}
			for _, s := range slots {
				fmt.Fprintf(out, "%s  %s → %s\n", s.ID, s.Start, s.End)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rangeStart, "from", "", "range start (ISO-8601)")
	cmd.Flags().StringVar(&rangeEnd, "to", "", "range end (ISO-8601)")

	return cmd
}
