package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rmarques/leadchat/internal/api"
	"github.com/rmarques/leadchat/internal/cache"
	"github.com/rmarques/leadchat/internal/config"
	"github.com/rmarques/leadchat/internal/conversation"
	"github.com/rmarques/leadchat/internal/domain"
	"github.com/rmarques/leadchat/internal/focus"
	"github.com/rmarques/leadchat/internal/session"
	"github.com/rmarques/leadchat/internal/store"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation with the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			kv := openKV(cfg)
			msgCache := cache.New(kv, cfg.Session.HistoryLimit, log)
			identity := session.NewIdentityManager(kv, log)
			client := api.NewHTTPClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)

			ctrl := conversation.New(client, msgCache, identity, log)
			return runChatLoop(ctx, ctrl, cmd)
		},
	}
}

// openKV opens the configured store, degrading to in-memory when the
// database cannot be opened so the conversation still works.
func openKV(cfg config.Config) store.KV {
	if cfg.Storage.Driver == "memory" {
		return store.NewMemoryKV()
	}

	path := cfg.Storage.Path
	if path == "" {
		path = paths.Database
	}
	db, err := store.Open(path, log)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("storage unavailable, history will not persist")
		return store.NewMemoryKV()
	}
	return store.NewSQLiteKV(db)
}

func runChatLoop(ctx context.Context, ctrl *conversation.Controller, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	fc := focus.New(focus.Sinks{
		FocusSlot:   func(i int) { fmt.Fprintf(out, "  » horário %d em foco\n", i+1) },
		FocusInput:  func() { fmt.Fprintln(out, "  » de volta à mensagem") },
		CancelOffer: ctrl.CancelOffer,
	}, log)

	ctrl.SetOfferChangeHook(func(offer domain.SlotOffer) {
		fc.OfferChanged(len(offer))
		if len(offer) > 0 {
			printOffer(out, offer)
		}
	})

	printed := 0
	printed = printNewMessages(out, ctrl, printed)

	fmt.Fprintln(out, "Digite sua mensagem. Com horários na tela: número escolhe, n/p navega, cancelar volta.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()

		if offer := ctrl.Offer(); len(offer) > 0 {
			if handleOfferInput(ctx, out, ctrl, fc, offer, line) {
				printed = printNewMessages(out, ctrl, printed)
				continue
			}
		}

		err := ctrl.Submit(ctx, line)
		switch err {
		case nil:
		case conversation.ErrSessionExpired:
			printed = printNewMessages(out, ctrl, printed)
			fmt.Fprintln(out, "Sessão encerrada.")
			return nil
		default:
			fmt.Fprintln(out, err)
			continue
		}
		printed = printNewMessages(out, ctrl, printed)

		if ctrl.State() == conversation.StateExpired {
			fmt.Fprintln(out, "Sessão encerrada.")
			return nil
		}
	}
}

// handleOfferInput interprets slot-navigation input. Returns false when
// the line is not a slot command and should be submitted as a message.
func handleOfferInput(ctx context.Context, out io.Writer, ctrl *conversation.Controller, fc *focus.Controller, offer domain.SlotOffer, line string) bool {
	switch line {
	case "n":
		fc.Next()
		return true
	case "p":
		fc.Prev()
		return true
	case "cancelar", "cancel":
		fc.Cancel()
		return true
	case "":
		// Enter picks the focused slot.
		if i := fc.Focused(); i >= 0 && i < len(offer) {
			pick(ctx, out, ctrl, offer[i])
		}
		return true
	}

	if i, err := strconv.Atoi(line); err == nil && i >= 1 && i <= len(offer) {
		pick(ctx, out, ctrl, offer[i-1])
		return true
	}
	return false
}

func pick(ctx context.Context, out io.Writer, ctrl *conversation.Controller, slot domain.Slot) {
	if err := ctrl.PickSlot(ctx, slot.ID, slot.Start, slot.End); err != nil {
		fmt.Fprintln(out, err)
	}
}

func printOffer(out io.Writer, offer domain.SlotOffer) {
	fmt.Fprintln(out, "Horários disponíveis:")
	for i, s := range offer {
		fmt.Fprintf(out, "  %d. %s – %s\n",
			i+1,
			s.Start.Local().Format("Mon 02/01 15:04"),
			s.End.Local().Format("15:04"),
		)
	}
}

func printNewMessages(out io.Writer, ctrl *conversation.Controller, printed int) int {
	msgs := ctrl.Messages()
	for _, m := range msgs[min(printed, len(msgs)):] {
		prefix := "você"
		if m.Who == domain.SenderBot {
			prefix = "bot "
		}
		fmt.Fprintf(out, "[%s] %s\n", prefix, m.Text)
	}
	return len(msgs)
}
