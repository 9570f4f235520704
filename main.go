// main.go

package main

import (
	"github.com/netbootworks/ztpctl/cmd"
	"github.com/netbootworks/ztpctl/pkg/logger"
	"github.com/netbootworks/ztpctl/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init("ztpctl"); err != nil {
		logger.L().Warn("Telemetry init failed, continuing without it", zap.Error(err))
	}

	cmd.Execute()
}
