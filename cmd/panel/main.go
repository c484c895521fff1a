package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smmboost/panel/internal/app/config"
	"github.com/smmboost/panel/internal/app/handlers"
	"github.com/smmboost/panel/internal/app/logger"
	middlware "github.com/smmboost/panel/internal/app/middleware"
	"github.com/smmboost/panel/internal/app/router"
	"github.com/smmboost/panel/internal/app/service"
	"github.com/smmboost/panel/internal/app/service/clients"
)

// @title           SMM Panel Gateway API
// @version         1.0
// @description     Gateway for the SMM order panel. Serves the catalog, balance
// @description     snapshots and the order submission flow to the browser; all
// @description     business state lives in the panel backend.

// @host      localhost:8080
// @BasePath  /api/panel

// @securityDefinitions.apikey  ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// Server run context
	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	c, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.InitLogger(c.LogLevel); err != nil {
		log.Fatal(err)
	}

	// backend boundary and caches
	bc := clients.NewPanelBackendClient(c)
	cs := service.NewCatalogService(c, bc)
	bs := service.NewBalanceService(c, bc)
	ors := service.NewOrderService(c, bc, cs, bs)
	tus := service.NewTopUpService(c, bc, bs)
	rs := service.NewRoleService(c, bc)
	pfs := service.NewProfileService(bc)
	ads := service.NewAdminService(c, bc, cs, bs, ors)
	ts := service.NewTokenService(c)

	// handlers
	ch := handlers.NewCatalogHandler(c.ContextTimeoutSec, cs)
	oh := handlers.NewOrdersHandler(c.ContextTimeoutSec, ors)
	bh := handlers.NewBalanceHandler(c.ContextTimeoutSec, bs, tus)
	ph := handlers.NewProfileHandler(c.ContextTimeoutSec, pfs, rs)
	ah := handlers.NewAdminHandler(c.ContextTimeoutSec, ads)

	am := middlware.NewAuthMiddleware(ts, rs)

	r := router.NewAppRouter(ch, oh, bh, ph, ah, am)

	// The HTTP Server
	server := &http.Server{Addr: c.ServerAddr, Handler: r}

	// Listen for syscall signals for process to interrupt/quit
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		// Shutdown signal with grace period of 30 seconds
		shutdownCtx, cancelFunc := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancelFunc()
		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		// Trigger graceful shutdown
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	// Run the server
	fmt.Printf("Starting server on %s...\n", c.ServerAddr)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	// Wait for server context to be stopped
	<-serverCtx.Done()
}
