package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"time"

	datatable "github.com/goliatone/go-datatable"
)

const elementID = "match-scores"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>go-datatable demo</title>
</head>
<body>
<h1>Live match scores</h1>
{{.Widget}}
<script>
const socket = new WebSocket("ws://" + location.host + "/ws?session=demo");
socket.addEventListener("message", (event) => {
	const envelope = JSON.parse(event.data);
	const log = document.createElement("pre");
	log.textContent = envelope.type + " " + JSON.stringify(envelope.payload);
	document.body.appendChild(log);
});
</script>
</body>
</html>`))

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	ctx := context.Background()

	cfg := datatable.DefaultConfig()
	cfg.Features.Sessions = true
	cfg.Sessions.AllowAnyOrigin = true

	module, err := datatable.New(cfg)
	if err != nil {
		log.Fatalf("datatable: %v", err)
	}
	defer module.Close()

	if err := seed(ctx, module); err != nil {
		log.Fatalf("seed: %v", err)
	}

	go pushUpdates(ctx, module)

	mux := http.NewServeMux()
	mux.Handle("/ws", module.Sessions())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		widget, err := module.RenderTable(r.Context(), elementID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, map[string]any{"Widget": widget}); err != nil {
			log.Printf("render page: %v", err)
		}
	})

	log.Printf("demo listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func seed(ctx context.Context, module *datatable.Module) error {
	def, err := module.Tables().RegisterDefinition(ctx, datatable.RegisterDefinitionInput{
		Name: "scores",
		Columns: []datatable.Column{
			{Name: "player", Header: "Player"},
			{Name: "points", Header: "Points", Align: "right"},
		},
		Defaults: &datatable.Options{
			DefaultPageSize: 10,
			Striped:         boolPtr(true),
			Highlight:       boolPtr(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = module.Tables().CreateInstance(ctx, datatable.CreateInstanceInput{
		DefinitionID: def.ID,
		ElementID:    elementID,
		Data:         randomRows(),
	})
	return err
}

func pushUpdates(ctx context.Context, module *datatable.Module) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		err := module.BroadcastTable(ctx, elementID, datatable.Update{
			Data: randomRows(),
		})
		if err != nil {
			log.Printf("broadcast: %v", err)
		}
	}
}

func randomRows() []map[string]any {
	players := []string{"Dana", "Maya", "Iris", "Theo", "Noor"}
	rows := make([]map[string]any, 0, len(players))
	for i, player := range players {
		rows = append(rows, map[string]any{
			"player": fmt.Sprintf("%s #%d", player, i+1),
			"points": rand.Intn(40),
		})
	}
	return rows
}

func boolPtr(v bool) *bool { return &v }
