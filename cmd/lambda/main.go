// Command lambda serves the HTTP API from AWS Lambda behind an API Gateway proxy integration.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"stockhive/internal/app"
	"stockhive/internal/config"
	"stockhive/internal/logger"
	"stockhive/internal/serverless"
)

func main() {
	cfg, err := config.LoadWithoutListener()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Built once per cold start and reused across invocations.
	rt, err := app.Bootstrap(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer rt.Close()

	lambda.Start(serverless.NewHandler(rt.App).Handle)
}
