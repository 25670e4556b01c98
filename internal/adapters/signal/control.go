package signal

import "github.com/skyfall/planning/internal/core"

func (ctl *Controller) handlePing(sig core.SignalConnection) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(sig, resp)
}
