/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valpere/frank/internal/refine"
	"github.com/valpere/frank/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the refinement API over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /healthz         health, 503 when the backend does not answer
  GET  /api/v1/models   models available on the backend
  POST /api/v1/refine   run a refinement; send "Accept: text/event-stream"
                        or ?stream=true to receive progress as server-sent events`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildClient(cfg)
		if err != nil {
			return err
		}

		engine := refine.New(client, refine.WithLogger(log))
		h := server.NewHandler(engine, client, server.Defaults{
			Model: cfg.Model,
			Steps: strconv.Itoa(checkSteps(cmd.ErrOrStderr(), cfg)),
		}, log)
		srv := server.NewServer(cfg.Server, h, log)

		log.Info("backend configured", "provider", cfg.Provider, "model", cfg.Model)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-quit:
			log.Info("shutdown signal received")
		case err := <-errCh:
			if err != nil {
				return err
			}
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info("server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("gin-mode", "release", "Gin mode: debug, release or test")

	bindFlags(serveCmd, map[string]string{
		"server.addr":     "addr",
		"server.gin_mode": "gin-mode",
	})
}
