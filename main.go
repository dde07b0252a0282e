package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"whiteboard/core"
	"whiteboard/handlers/api/boards"
	"whiteboard/handlers/auth"
	"whiteboard/handlers/websocket"
	authMiddleware "whiteboard/middleware"
	"whiteboard/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const shutdownTimeout = 10 * time.Second

func allowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func setupRouter(store core.BoardStore, origins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	corsOrigins := origins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-CSRF-Token", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api/v2", func(r chi.Router) {
		r.Use(authMiddleware.AuthJWT)
		r.Get("/me", auth.HandleMe(authMiddleware.Claims))
		r.Route("/boards", func(r chi.Router) {
			boards.Routes(r, store)
		})
	})

	return r
}

func waitForShutdown(srv *http.Server, ioo *socketio.Server, store core.BoardStore) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	s := <-signalC
	logrus.WithField("signal", s.String()).Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	ioo.Close(nil)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}
	if closer, ok := store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close store")
		}
	}
}

func mintToken(subject string) error {
	token, err := auth.CreateJWT(&core.User{Subject: subject, Login: subject, Name: subject}, auth.DefaultTokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	mintSubject := flag.String("mint-token", "", "Print a development token for the given subject and exit.")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	auth.InitAuth()
	if *mintSubject != "" {
		if err := mintToken(*mintSubject); err != nil {
			logrus.WithError(err).Fatal("Failed to mint token")
		}
		return
	}

	store, err := stores.GetStore(context.Background())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}

	origins := allowedOrigins()
	r := setupRouter(store, origins)

	ioo := websocket.SetupSocketIO(websocket.Config{
		Store:        store,
		DeferredText: os.Getenv("TEXT_EDIT_MODE") == "deferred",
		Origins:      origins,
	})
	r.Mount("/socket.io/", ioo.ServeHandler(nil))

	srv := &http.Server{Addr: *listenAddress, Handler: r}
	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(srv, ioo, store)
}
