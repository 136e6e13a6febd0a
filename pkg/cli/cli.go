package cli

import (
	"context"

	"github.com/joshua-hq/warroom/pkg/cli/config"
	"github.com/joshua-hq/warroom/pkg/domain/model/lang"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var locale lang.Lang
	var closer func()
	app := &cli.Command{
		Name:  "warroom",
		Usage: "warroom",
		Flags: append(loggerCfg.Flags(),
			&cli.StringFlag{
				Name:        "lang",
				Usage:       "UI language [fr|en]",
				Value:       string(lang.Default),
				Sources:     cli.EnvVars("WARROOM_LANG"),
				Destination: (*string)(&locale),
			},
		),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Info("base options", "lang", locale, "logger", loggerCfg)

			if err := locale.Validate(); err != nil {
				return ctx, err
			}

			return lang.With(ctx, locale), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdChat(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, flag := range flags {
		result = append(result, flag...)
	}
	return result
}
