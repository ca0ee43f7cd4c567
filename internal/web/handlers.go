package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/stepgo/stepgo/internal/logic/motor"
	"github.com/stepgo/stepgo/pkg/motion"
	"github.com/stepgo/stepgo/pkg/stepper"
)

// Motor is the command surface the handlers need. Implemented by
// motor.Service.
type Motor interface {
	Status() motor.Status
	MoveTo(targetStep int, maxVelocity float64) error
	ResetPosition(step int)
	SetStepMode(microsteps int) error
}

// MoveRequest is the body of POST /api/move.
type MoveRequest struct {
	TargetStep  int     `json:"target_step"`
	MaxVelocity float64 `json:"max_velocity"` // steps/s, 0 = configured default
}

// ResetRequest is the body of POST /api/reset.
type ResetRequest struct {
	Step int `json:"step"`
}

// StepModeRequest is the body of POST /api/stepmode.
type StepModeRequest struct {
	Microsteps int `json:"microsteps"`
}

// MaxTargetStep bounds move targets to keep nonsense requests (and integer
// overflow in step math) out of the engine.
const MaxTargetStep = 100_000_000

// ValidateMoveRequest checks a move request for range and NaN/Inf issues.
func ValidateMoveRequest(req MoveRequest) error {
	if req.TargetStep > MaxTargetStep || req.TargetStep < -MaxTargetStep {
		return fmt.Errorf("target_step must be within ±%d, got %d", MaxTargetStep, req.TargetStep)
	}
	if math.IsNaN(req.MaxVelocity) || math.IsInf(req.MaxVelocity, 0) {
		return fmt.Errorf("max_velocity must be a finite number")
	}
	if req.MaxVelocity < 0 {
		return fmt.Errorf("max_velocity must be >= 0, got %g", req.MaxVelocity)
	}
	return nil
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Motor       Motor
}

// NewHandlers creates handlers with the given dependencies.
// If m is nil, the command endpoints return 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, m Motor) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Motor:       m,
	}
}

// HandleStatus returns the current motor status as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if h.Motor == nil {
		http.Error(w, "motor not configured", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Motor.Status())
}

// HandleMove handles POST /api/move to start (or override) a motion. The
// motion runs in the background; clients follow it on the status stream.
func (h *Handlers) HandleMove(w http.ResponseWriter, r *http.Request) {
	if h.Motor == nil {
		http.Error(w, "motor not configured", http.StatusServiceUnavailable)
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := ValidateMoveRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Motor.MoveTo(req.TargetStep, req.MaxVelocity); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.Broadcaster.Broadcast("info", fmt.Sprintf("Moving to step %d", req.TargetStep))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "moving"})
}

// HandleReset handles POST /api/reset to overwrite the position counter.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	if h.Motor == nil {
		http.Error(w, "motor not configured", http.StatusServiceUnavailable)
		return
	}

	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Step > MaxTargetStep || req.Step < -MaxTargetStep {
		http.Error(w, fmt.Sprintf("step must be within ±%d", MaxTargetStep), http.StatusBadRequest)
		return
	}

	h.Motor.ResetPosition(req.Step)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Motor.Status())
}

// HandleStepMode handles POST /api/stepmode to change the microstepping
// resolution. Fails with 409 while a motion is in progress.
func (h *Handlers) HandleStepMode(w http.ResponseWriter, r *http.Request) {
	if h.Motor == nil {
		http.Error(w, "motor not configured", http.StatusServiceUnavailable)
		return
	}

	var req StepModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.Motor.SetStepMode(req.Microsteps)
	switch {
	case err == nil:
	case errors.Is(err, motion.ErrBusy):
		http.Error(w, "motion in progress", http.StatusConflict)
		return
	default:
		var invalid *stepper.InvalidStepModeError
		var capErr *stepper.CapabilityError
		if errors.As(err, &invalid) || errors.As(err, &capErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.Broadcaster.Broadcast("info", fmt.Sprintf("Step mode set to 1/%d", req.Microsteps))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Motor.Status())
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
