package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicbridge/complaint-service/internal/config"
)

// NewApp builds the fiber application with the configured body limit. Multipart
// uploads are buffered in full, so the limit bounds a whole complaint submission.
// Immutable is required: params and body values are stored by the memory store
// after the handler returns, so they must not alias fasthttp's reused buffers.
func NewApp(cfg config.AppConfig) *fiber.App {
	fiberCfg := fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		Immutable:             true,
	}
	if cfg.BodyLimitBytes > 0 {
		fiberCfg.BodyLimit = cfg.BodyLimitBytes
	}
	return fiber.New(fiberCfg)
}
