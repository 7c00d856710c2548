package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// multipartOverhead leaves room for form boundaries around a maximum-size upload.
const multipartOverhead = 1 << 20

// NewApp creates the Fiber application with the envelope error handler and a
// body limit large enough for maxUpload bytes of image data.
func NewApp(name string, maxUpload int64, readTimeout time.Duration) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		BodyLimit:             int(maxUpload) + multipartOverhead,
		ReadTimeout:           readTimeout,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
}
