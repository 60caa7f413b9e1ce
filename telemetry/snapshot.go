package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/trail/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is the visible trail state at one frame, for inspecting a run after
// the fact.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Frame int64   `json:"frame"`
	Hue   float64 `json:"hue"`

	Particles []ParticleState `json:"particles"`
}

// ParticleState holds one particle's state.
type ParticleState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VelX    float64 `json:"vel_x"`
	VelY    float64 `json:"vel_y"`
	Size    float64 `json:"size"`
	Life    float64 `json:"life"`
	MaxLife int     `json:"max_life"`
	Hue     int     `json:"hue"`
	Shape   string  `json:"shape"`
}

// NewSnapshot copies the live particles in draw order.
func NewSnapshot(seed int64, width, height int, frame int64, hue float64, particles []systems.Particle) *Snapshot {
	states := make([]ParticleState, len(particles))
	for i, p := range particles {
		states[i] = ParticleState{
			X:       p.X,
			Y:       p.Y,
			VelX:    p.VelX,
			VelY:    p.VelY,
			Size:    p.Size,
			Life:    p.Life,
			MaxLife: p.MaxLife,
			Hue:     p.Hue,
			Shape:   p.Shape.String(),
		}
	}
	return &Snapshot{
		Version:   SnapshotVersion,
		Seed:      seed,
		Width:     width,
		Height:    height,
		Frame:     frame,
		Hue:       hue,
		Particles: states,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Frame))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
