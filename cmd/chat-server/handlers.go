package main

import (
	"encoding/json"
	"log"
	"net/http"

	gows "github.com/gorilla/websocket"

	"chatroom"
	"chatroom/rawconn"
	"chatroom/wsconn"
)

// handleHealth report that the process is up.
func handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "healthy",
		"service": "chat-server",
	})
}

// handleRooms list every active room and its member count.
func handleRooms(reg *chatroom.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		infos := reg.Rooms()
		if infos == nil {
			infos = []chatroom.RoomInfo{}
		}
		writeJSON(w, infos)
	}
}

// handleChat upgrade the request with gorilla/websocket and run a session
// until the client goes away.
func handleChat(reg *chatroom.Registry, upgrader gows.Upgrader, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := req.URL.Query().Get("name")
		if len(name) == 0 {
			http.Error(w, "missing 'name' query parameter", http.StatusBadRequest)
			return
		}

		conn, err := wsconn.Upgrade(upgrader, cfg.PingTimeout, w, req)
		if err != nil {
			log.Printf("[ERROR] chat-server: Couldn't upgrade the connection: %+v", err)
			return
		}

		runSession(reg, conn, name)
	}
}

// handleRawChat upgrade the request with gobwas/ws, hijacking the network
// connection, and run a session until the client goes away.
func handleRawChat(reg *chatroom.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := req.URL.Query().Get("name")
		if len(name) == 0 {
			http.Error(w, "missing 'name' query parameter", http.StatusBadRequest)
			return
		}

		conn, err := rawconn.Upgrade(w, req)
		if err != nil {
			log.Printf("[ERROR] chat-server: Couldn't upgrade the connection: %+v", err)
			return
		}

		runSession(reg, conn, name)
	}
}

// runSession start the session for an upgraded connection on its own
// goroutine, closing the connection if the name was refused.
func runSession(reg *chatroom.Registry, conn chatroom.Conn, name string) {
	sess, err := chatroom.NewSession(reg, conn, name)
	if err != nil {
		log.Printf("[INFO] chat-server: Refusing session for %q: %+v", name, err)
		conn.Close()
		return
	}

	go sess.Run()
}

// writeJSON encode `v` as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Printf("[ERROR] chat-server: Couldn't encode the response: %+v", err)
	}
}
