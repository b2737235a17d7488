// Command planserve runs a configured search over a task and streams its
// live statistics to a browser over a websocket, the same "push updates
// to an open connection" shape a training visualizer uses to stream
// value-function snapshots while an agent trains.
package main

import (
	"encoding/json"
	"flag"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/sasplan/planner/pkg/engine"
	"github.com/sasplan/planner/pkg/progress"
	"github.com/sasplan/planner/pkg/task"
)

const (
	writeWait      = 1 * time.Second
	publishEvery   = 200 * time.Millisecond
	closeGraceWait = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	taskPath := flag.String("task", "", "path to a task JSON file")
	description := flag.String("description", "astar(blind())", "search configuration")
	flag.Parse()

	if *taskPath == "" {
		log.Fatal("planserve: -task is required")
	}
	t, err := loadTask(*taskPath)
	if err != nil {
		log.Fatalf("planserve: %v", err)
	}

	srv := &server{task: t, description: *description, stream: progress.NewStream()}

	r := mux.NewRouter()
	r.HandleFunc("/", srv.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", srv.serveWebsocket).Methods(http.MethodGet)

	slog.Info("planserve listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatalf("planserve: %v", err)
	}
}

type server struct {
	task        *task.Task
	description string
	stream      *progress.Stream
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><title>planserve</title></head>
<body>
<h1>planctl live search</h1>
<pre id="out">connecting...</pre>
<script>
const out = document.getElementById("out");
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => { out.textContent = JSON.stringify(JSON.parse(ev.data), null, 2); };
ws.onclose = () => { out.textContent += "\n(closed)"; };
</script>
</body></html>`))

func (s *server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_ = indexTemplate.Execute(w, nil)
}

// serveWebsocket starts a fresh search run for this connection and
// streams its progress until the search ends or the client disconnects.
func (s *server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("websocket upgrade failed", "err", err)
		return
	}
	defer closeWebsocket(ws)

	sub, unsubscribe := s.stream.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := engine.Solve(s.task, s.description, engine.Options{Progress: s.stream})
		if err != nil {
			slog.Warn("search finished with error", "err", err)
		}
	}()

	for {
		select {
		case snap, ok := <-sub:
			if !ok {
				return
			}
			if err := writeSnapshot(ws, snap); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeSnapshot(ws *websocket.Conn, snap progress.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(websocket.TextMessage, data)
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGraceWait)
	ws.Close()
}

func loadTask(path string) (*task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Variables []task.Variable `json:"variables"`
		Operators []task.Operator `json:"operators"`
		Axioms    []task.Operator `json:"axioms"`
		Initial   []int           `json:"initial"`
		Goal      task.Goal       `json:"goal"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return task.New(doc.Variables, doc.Operators, doc.Axioms, doc.Initial, doc.Goal)
}
