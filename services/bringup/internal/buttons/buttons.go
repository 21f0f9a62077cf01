// Package buttons claims the button inputs and pairs each with a copy of the
// shared timebase. Debounce and edge logic belong to drivers/button.
package buttons

import (
	"gfxpack-go/drivers/button"
	"gfxpack-go/services/bringup/internal/clocks"
	"gfxpack-go/services/bringup/internal/pinmux"
	"gfxpack-go/x/logx"
)

// Count is the number of buttons on the board.
const Count = 5

// Configure claims each pin as a pull-up input and builds one handle per pin,
// in the order given.
func Configure(m *pinmux.Mux, tb clocks.Timer, pins [Count]int, log *logx.Logger) ([Count]*button.Button, error) {
	var out [Count]*button.Button
	for i, n := range pins {
		in, err := m.InputPullUp(n)
		if err != nil {
			return [Count]*button.Button{}, err
		}
		out[i] = button.New(in, tb)
	}
	log.Info("buttons ready", "count", Count)
	return out, nil
}
