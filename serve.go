package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Aashish23092/shipment-label-extractor/config"
	"github.com/Aashish23092/shipment-label-extractor/handler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the label extraction HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg, false)

		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		router := newRouter(cfg, handler.NewLabelHandler(comps.labels, comps.exports, cfg.MaxFileSize))
		srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: router}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Starting Shipment Label Extractor on port %s", cfg.ServerPort)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Println("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func newRouter(cfg *config.Config, labels *handler.LabelHandler) *gin.Engine {
	if !cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxMultipartMemory

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Shipment Label Extractor",
			"version": version,
		})
	})

	labels.Register(router.Group("/api/v1"))
	return router
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
