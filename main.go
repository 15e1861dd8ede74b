package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mynaparrot/plugnmeet-speech-relay/helpers"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/factory"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/logging"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/routers"
	"github.com/mynaparrot/plugnmeet-speech-relay/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:        "speech-relay",
		Usage:       "Relay live speech recognition and translations to listeners",
		Description: "without option will start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
		},
		Action:  startServer,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

func startServer(ctx context.Context, c *cli.Command) error {
	appCnf, err := helpers.ReadYamlConfigFile(c.String("config"))
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&appCnf.LogSettings)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	appCnf.Logger = logger

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	err = helpers.PrepareServer(ctx, appCnf)
	if err != nil {
		return err
	}
	// defer close connections
	defer helpers.HandleCloseConnections(appCnf)

	appFactory, err := factory.NewAppFactory(ctx, appCnf)
	if err != nil {
		return err
	}

	rt := routers.New(appFactory.AppConfig, appFactory.Controllers)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("port", appCnf.Client.Port).Infoln("speech relay started")
		return rt.Listen(fmt.Sprintf(":%d", appCnf.Client.Port))
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Infoln("exit requested, shutting down")

		// relay sessions first, fiber waits for open websocket handlers
		appFactory.Shutdown()
		return rt.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
