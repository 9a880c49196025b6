package main

import (
	"context"
	"errors"
	"os"

	"github.com/fsdevblog/smm-panel/internal/app"
	"github.com/fsdevblog/smm-panel/internal/config"
	"github.com/fsdevblog/smm-panel/internal/logger"
)

func main() {
	conf := config.MustLoadConfig()
	l, err := logger.New(os.Stdout, conf.LogLevel)
	if err != nil {
		panic(err)
	}

	if runErr := app.New(conf, l).Run(); runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			l.Info("graceful shutdown")
			os.Exit(0)
		}
		l.WithError(runErr).Fatal("app stopped")
	}
}
