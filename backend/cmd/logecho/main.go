// Command logecho is a diagnostic Lambda handler. It logs the raw invocation
// payload and responds with the name of the CloudWatch log stream the
// invocation wrote to, so an operator can jump straight from a test invoke to
// the relevant logs.
package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

type handler struct {
	logger *zap.Logger
}

func (h *handler) Handle(ctx context.Context, event json.RawMessage) (string, error) {
	h.logger.Info("received event", zap.ByteString("event", event))
	return lambdacontext.LogStreamName, nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	h := &handler{logger: logger}
	lambda.Start(h.Handle)
}
