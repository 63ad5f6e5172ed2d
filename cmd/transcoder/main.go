package main

import (
	"os"

	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error.Printf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
