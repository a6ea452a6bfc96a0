// A line-oriented terminal client for the chat server.
//
// Connects to the server's /ws endpoint, forwards stdin lines as-is (so
// /join, /list etc. work exactly as over any other client) and renders the
// server's JSON frames with a bit of color.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
	gows "github.com/gorilla/websocket"

	"chatroom"
	"chatroom/wsconn"
)

// pingTimeout after which the client pings a silent server.
const pingTimeout = time.Minute

func main() {
	var server, name string

	flag.StringVar(&server, "server", "ws://localhost:8888", "base URL of the chat server")
	flag.StringVar(&name, "name", "", "display name; prompted for if empty")
	flag.Parse()

	in := bufio.NewScanner(os.Stdin)
	for len(strings.TrimSpace(name)) == 0 {
		fmt.Print("Enter your name: ")
		if !in.Scan() {
			return
		}
		name = in.Text()
	}
	name = strings.TrimSpace(name)

	u, err := url.Parse(server)
	if err != nil {
		log.Fatalf("Invalid server URL: %+v", err)
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()

	ws, _, err := gows.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Couldn't connect to %s: %+v", u.String(), err)
	}
	conn := wsconn.Wrap(ws, pingTimeout)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			frame, err := conn.Recv()
			if err != nil {
				color.Red.Println("Disconnected from the server")
				return
			}
			printFrame(frame)
		}
	}()

	for in.Scan() {
		line := in.Text()
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		if err := conn.SendStr(line); err != nil {
			break
		}
		if strings.EqualFold(strings.TrimSpace(line), "/quit") {
			break
		}
	}

	conn.Close()
	<-done
}

// printFrame render one server frame on the terminal.
func printFrame(frame string) {
	msg, err := chatroom.DecodeMessage(frame)
	if err != nil {
		// Not a frame this client understands; show it raw.
		fmt.Println(frame)
		return
	}

	ts := msg.CreatedAt.Format("15:04:05")
	switch msg.Kind {
	case chatroom.KindChat:
		fmt.Printf("[%s] %s: %s\n", ts, color.Green.Sprint(msg.From), msg.Body)
	case chatroom.KindSystem:
		color.Cyan.Printf("[%s] %s\n", ts, msg.Body)
	case chatroom.KindRoster:
		color.Yellow.Printf("[%s] Members of %s: %s\n", ts, msg.Room, msg.Body)
	case chatroom.KindRooms:
		color.Yellow.Printf("[%s] Rooms: %s\n", ts, msg.Body)
	case chatroom.KindError:
		color.Red.Printf("[%s] Error: %s\n", ts, msg.Body)
	default:
		fmt.Println(frame)
	}
}
