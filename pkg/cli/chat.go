package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joshua-hq/warroom/pkg/cli/config"
	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/repository"
	"github.com/joshua-hq/warroom/pkg/service/enrich"
	"github.com/joshua-hq/warroom/pkg/service/identity"
	"github.com/joshua-hq/warroom/pkg/service/share"
	"github.com/joshua-hq/warroom/pkg/usecase"
	"github.com/joshua-hq/warroom/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdChat() *cli.Command {
	var (
		name         string
		gateCfg      config.Gate
		geminiCfg    config.GeminiCfg
		firestoreCfg config.Firestore
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "Display name for chat messages",
				Destination: &name,
			},
		},
		gateCfg.Flags(),
		geminiCfg.Flags(),
		firestoreCfg.Flags(),
	)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Join the shared chat from the terminal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := gateCfg.Validate(); err != nil {
				return err
			}

			var store interfaces.DocumentStore
			if firestoreCfg.IsConfigured() {
				fs, err := firestoreCfg.Configure(ctx, gateCfg.AppID())
				if err != nil {
					return err
				}
				store = fs
			} else {
				store = repository.NewMemory()
			}
			defer safe.Close(ctx, store)

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}

			uc := usecase.New(store, enrich.New(llmClient), identity.New(),
				usecase.WithAccessCode(gateCfg.AccessCode()),
				usecase.WithChatWindow(gateCfg.ChatWindow()),
			)

			ctrl, err := uc.NewSession(ctx)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if name != "" {
				ctrl.Session().SetDisplayName(name)
			}

			if err := ctrl.Unlock(ctx, gateCfg.AccessCode()); err != nil {
				return err
			}
			if err := ctrl.SetView(ctx, types.ViewMember); err != nil {
				return err
			}

			sender := color.New(color.FgHiCyan).SprintFunc()
			cancel, err := store.WatchMessages(ctx, gateCfg.ChatWindow(), func(msgs []*chat.Message) {
				if len(msgs) == 0 {
					return
				}
				last := msgs[len(msgs)-1]
				fmt.Printf("%s %s\n", sender(last.SenderName+":"), last.Text)
			})
			if err != nil {
				return err
			}
			defer cancel()

			fmt.Printf("war room: %s\n", share.WarRoomURL(gateCfg.AppID()))
			fmt.Println("type a message, or '/report <verse> :: <text>' to submit a report, or '/exit'")

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "/exit":
					return nil

				case line == "/rank":
					tier := ctrl.Rank()
					fmt.Printf("rank: %s (%d messages)\n", tier, ctrl.ActivityCount())

				case strings.HasPrefix(line, "/report "):
					verse, text, ok := strings.Cut(strings.TrimPrefix(line, "/report "), "::")
					if !ok {
						fmt.Println("usage: /report <verse> :: <text>")
						continue
					}
					fb, err := ctrl.SubmitReport(ctx, report.Input{
						AuthorName: ctrl.Session().DisplayNameOrFallback(),
						VerseRef:   strings.TrimSpace(verse),
						Revelation: strings.TrimSpace(text),
					})
					if err != nil {
						fmt.Printf("report failed: %v\n", err)
						continue
					}
					fmt.Printf("encouragement: %s\nprayer: %s\n", fb.Encouragement, fb.Prayer)

				default:
					if err := ctrl.SendMessage(ctx, line); err != nil {
						fmt.Printf("send failed: %v\n", err)
					}
				}
			}
			if err := scanner.Err(); err != nil {
				return goerr.Wrap(err, "failed to read input")
			}

			return nil
		},
	}
}
