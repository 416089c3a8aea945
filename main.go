package main

import (
	"os"
	"os/signal"
	"syscall"

	"festgo.app/configs"
	"festgo.app/configs/configsdatabase"
	"festgo.app/configs/configslog"
	"festgo.app/routes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	app := fiber.New(fiber.Config{
		AppName:      "festgo",
		ErrorHandler: errorHandler,
	})
	routes.SetupRoutes(app)

	// Shut down cleanly on SIGINT/SIGTERM so in-flight requests finish.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		configslog.SLog.Info("Shutdown signal received, draining...")
		if err := app.Shutdown(); err != nil {
			configslog.Log.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := configs.AppPort()
	configslog.SLog.Infof("Listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		configslog.Log.Fatal("Server stopped unexpectedly", zap.Error(err))
	}
}

// errorHandler turns unhandled fiber errors into JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		configslog.Log.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(code).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
