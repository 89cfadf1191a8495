// Preview - dials a running capture server and saves viewfinder frames.
//
// Useful for checking camera focus and framing without the front end:
//
//	preview -addr localhost:8090 -n 10 -dir ./frames
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8090", "capture server address")
	count := flag.Int("n", 10, "number of frames to save")
	dir := flag.String("dir", ".", "output directory")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/preview", *addr)
	fmt.Printf("connecting to %s\n", url)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: connect failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	saved := 0
	for saved < *count {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintf(os.Stderr, "preview: read failed: %v\n", err)
			os.Exit(1)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		path := filepath.Join(*dir, fmt.Sprintf("frame-%03d.jpg", saved))
		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "preview: write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("saved %s (%d bytes)\n", path, len(data))
		saved++
	}
}
