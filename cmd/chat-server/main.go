package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gows "github.com/gorilla/websocket"

	"chatroom"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	cfg := loadConfig()

	conf := chatroom.GetDefaultServerConf()
	conf.Logger = log.Default()
	conf.DebugLog = cfg.DebugLog
	reg := chatroom.NewRegistry(conf)

	upgrader := gows.Upgrader{
		ReadBufferSize:  cfg.ReadBuf,
		WriteBufferSize: cfg.WriteBuf,
		CheckOrigin: func(req *http.Request) bool {
			return true
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", handleHealth)
	r.Get("/rooms", handleRooms(reg))
	r.Get("/ws", handleChat(reg, upgrader, cfg))
	r.Get("/rawws", handleRawChat(reg))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] chat-server: Listening on %s", cfg.Addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[ERROR] chat-server: %+v", err)
		}
	}()

	intHndlr := make(chan os.Signal, 1)
	signal.Notify(intHndlr, os.Interrupt)
	<-intHndlr

	log.Printf("[INFO] chat-server: Exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] chat-server: Shutdown: %+v", err)
	}
	reg.Close()
}
