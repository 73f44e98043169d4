// lotus-watch tails a running lotus dashboard and prints each breath
// transition and face status change.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-lotus/pkg/web"
)

// status mirrors web.Status with the phase as its wire name.
type status struct {
	web.Status
	Phase string `json:"phase"`
}

func main() {
	addr := flag.String("addr", "localhost:8080", "Dashboard address")
	logs := flag.Bool("logs", false, "Tail the event log instead of status")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := "/ws/status"
	if *logs {
		path = "/ws/logs"
	}
	u := url.URL{Scheme: "ws", Host: *addr, Path: path}

	backoff := time.Second
	for {
		err := watch(ctx, u.String(), *logs, os.Stdout)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(os.Stderr, "lotus-watch: %v (retrying in %s)\n", err, backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 10*time.Second {
			backoff *= 2
		}
	}
}

func watch(ctx context.Context, addr string, logs bool, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	p := printer{out: out}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if logs {
			var e web.LogEntry
			if err := json.Unmarshal(data, &e); err != nil {
				continue
			}
			fmt.Fprintf(out, "%s  %-6s %s\n", e.Time, e.Type, e.Message)
			continue
		}
		var st status
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		p.print(st)
	}
}

// printer writes a line only when something a person would notice changed.
type printer struct {
	out  io.Writer
	last *status
}

func (p *printer) print(st status) {
	if p.last != nil &&
		p.last.Phase == st.Phase &&
		p.last.Mode == st.Mode &&
		p.last.FaceStatus == st.FaceStatus &&
		p.last.Music == st.Music {
		return
	}

	line := fmt.Sprintf("%s  %-9s %-7s %-14s", time.Now().Format("15:04:05"), st.Mode, st.Phase, st.Instruction)
	if st.CycleText != "" {
		line += "  " + st.CycleText
	}
	if p.last == nil || p.last.FaceStatus != st.FaceStatus {
		line += "  | " + st.FaceStatus
	}
	if st.Music {
		line += "  ♪"
	}
	fmt.Fprintln(p.out, line)
	p.last = &st
}
