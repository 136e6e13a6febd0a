package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Gate carries the shared access code and the app namespace under
// which the public collections live.
type Gate struct {
	accessCode string
	appID      string
	chatWindow int
}

func (x *Gate) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "access-code",
			Usage:       "Shared access code for the gate screen",
			Category:    "Gate",
			Sources:     cli.EnvVars("WARROOM_ACCESS_CODE"),
			Destination: &x.accessCode,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "app-id",
			Usage:       "App namespace for shared collections",
			Category:    "Gate",
			Sources:     cli.EnvVars("WARROOM_APP_ID"),
			Value:       "qg-josue-global",
			Destination: &x.appID,
		},
		&cli.IntFlag{
			Name:        "chat-window",
			Usage:       "How many recent chat messages to subscribe",
			Category:    "Gate",
			Sources:     cli.EnvVars("WARROOM_CHAT_WINDOW"),
			Value:       50,
			Destination: &x.chatWindow,
		},
	}
}

func (x Gate) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_code", "(redacted)"),
		slog.String("app_id", x.appID),
		slog.Int("chat_window", x.chatWindow),
	)
}

func (x *Gate) Validate() error {
	if x.accessCode == "" {
		return goerr.New("access code must not be empty")
	}
	if x.chatWindow <= 0 {
		return goerr.New("chat window must be positive", goerr.V("chat_window", x.chatWindow))
	}
	return nil
}

func (x *Gate) AccessCode() string { return x.accessCode }
func (x *Gate) AppID() string      { return x.appID }
func (x *Gate) ChatWindow() int    { return x.chatWindow }
