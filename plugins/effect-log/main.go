// Command effect-log is a sample mudra plugin. It appends each effect request
// to effects.jsonl in its working directory, or to $MUDRA_EFFECT_LOG when set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/pkg/logger"
)

type entry struct {
	plugin.Request
	RenderedAt time.Time `json:"rendered_at"`
}

func main() {
	ctx := context.Background()
	_ = logger.InitWithWriter(os.Stderr)
	log := logger.Named("effect-log")

	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(plugin.Response{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	if req.Action != "" && req.Action != "render" {
		respond(plugin.Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	path := os.Getenv("MUDRA_EFFECT_LOG")
	if path == "" {
		path = "effects.jsonl"
	}
	if err := appendEntry(path, entry{Request: req, RenderedAt: time.Now().UTC()}); err != nil {
		log.Error(ctx, "append effect", logger.String("path", path), logger.Error(err))
		respond(plugin.Response{Error: err.Error()})
		return
	}

	log.Debug(ctx, "effect rendered",
		logger.String("effect", req.Effect),
		logger.String("combo_id", req.ComboID))
	data, _ := json.Marshal(map[string]string{"path": path})
	respond(plugin.Response{Success: true, Data: data})
}

func appendEntry(path string, e entry) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(e)
}

func respond(resp plugin.Response) {
	_ = json.NewEncoder(os.Stdout).Encode(resp)
}
