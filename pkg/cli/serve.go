package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshua-hq/warroom/pkg/cli/config"
	server "github.com/joshua-hq/warroom/pkg/controller/http"
	websocket_controller "github.com/joshua-hq/warroom/pkg/controller/websocket"
	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/repository"
	"github.com/joshua-hq/warroom/pkg/service/enrich"
	"github.com/joshua-hq/warroom/pkg/service/identity"
	"github.com/joshua-hq/warroom/pkg/usecase"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/joshua-hq/warroom/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		addr         string
		gateCfg      config.Gate
		sentryCfg    config.Sentry
		geminiCfg    config.GeminiCfg
		firestoreCfg config.Firestore
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("WARROOM_ADDR"),
				Usage:       "Listen address (default: 127.0.0.1:8080)",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
		},
		gateCfg.Flags(),
		sentryCfg.Flags(),
		geminiCfg.Flags(),
		firestoreCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the sync gateway",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"gate", gateCfg,
				"sentry", sentryCfg,
				"gemini", geminiCfg,
				"firestore", firestoreCfg,
			)

			if err := gateCfg.Validate(); err != nil {
				return err
			}

			if err := sentryCfg.Configure(); err != nil {
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
				logging.Default().Warn("Firestore is not configured, using in-memory store. Data is lost on restart.")
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

			wsHub := websocket_controller.NewHub(ctx)
			go wsHub.Run()
			defer wsHub.Stop()

			// Fan the shared collections out to every connected web client.
			cancelReports, err := store.WatchReports(ctx, 0, func(reports []*report.Report) {
				if err := wsHub.Broadcast(websocket_controller.StreamReports, reports); err != nil {
					logging.From(ctx).Error("failed to broadcast reports", logging.ErrAttr(err))
				}
			})
			if err != nil {
				return err
			}
			defer cancelReports()

			cancelChat, err := store.WatchMessages(ctx, gateCfg.ChatWindow(), func(msgs []*chat.Message) {
				if err := wsHub.Broadcast(websocket_controller.StreamChat, msgs); err != nil {
					logging.From(ctx).Error("failed to broadcast chat", logging.ErrAttr(err))
				}
			})
			if err != nil {
				return err
			}
			defer cancelChat()

			httpServer := http.Server{
				Addr: addr,
				Handler: server.New(uc,
					server.WithWebSocket(wsHub.Handler()),
					server.WithAppID(gateCfg.AppID()),
				),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}
}
