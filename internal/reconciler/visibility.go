package reconciler

import (
	"fmt"
	"strings"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// Overlay is a presentation surface registered with a set of capabilities.
type Overlay struct {
	Name         string
	Capabilities []string
}

// Has reports whether the overlay declares the capability.
func (o Overlay) Has(capability string) bool {
	for _, c := range o.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Visible reports whether the overlay shows under v. Overlays without any
// view capability are never hidden by game progress.
func (o Overlay) Visible(v models.Visibility) bool {
	viewed := false
	for _, c := range []string{models.CapabilityLive, models.CapabilityMap, models.CapabilityCamera} {
		if o.Has(c) {
			viewed = true
			if v.Has(c) {
				return true
			}
		}
	}
	return !viewed
}

var knownCapabilities = map[string]bool{
	models.CapabilityLive:        true,
	models.CapabilityMap:         true,
	models.CapabilityCamera:      true,
	models.CapabilityDefaultHide: true,
}

// ParseOverlays reads registrations of the form "name=cap1,cap2;name2=cap".
func ParseOverlays(raw string) ([]Overlay, error) {
	var out []Overlay
	seen := make(map[string]bool)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, caps, _ := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("overlay %q: empty name", entry)
		}
		if seen[name] {
			return nil, fmt.Errorf("overlay %q registered twice", name)
		}
		seen[name] = true

		o := Overlay{Name: name}
		for _, c := range strings.Split(caps, ",") {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if !knownCapabilities[c] {
				return nil, fmt.Errorf("overlay %q: unknown capability %q", name, c)
			}
			o.Capabilities = append(o.Capabilities, c)
		}
		out = append(out, o)
	}
	return out, nil
}

// Visibility decides which views show for the game state and recognition
// signals. It has no side effects.
func Visibility(state models.GameState, banner, mapRecognized, winnerDetermined bool) models.Visibility {
	switch {
	case state.IsPrematch():
		return models.Visibility{Live: true}
	case state == models.StatePlaying && banner:
		return models.Visibility{Live: true, Camera: !winnerDetermined}
	case state == models.StatePlaying:
		return models.Visibility{Live: true, Map: mapRecognized && !winnerDetermined}
	}
	return models.Visibility{}
}

func (r *Reconciler) emitVisibility() {
	v := Visibility(r.game.State, r.bannerRecognized, r.mapRecognized, r.winnerDetermined)
	r.visibility = v
	r.global(models.CapabilityLive, v.Live)
	r.global(models.CapabilityMap, v.Map)
	r.global(models.CapabilityCamera, v.Camera)
	for _, o := range r.overlays {
		r.overlayParam(o.Name, ParamVisible, o.Visible(v))
	}
}

// emitForceHide applies the operator hide switches, defaulting to the
// overlay's defaulthide capability.
func (r *Reconciler) emitForceHide() {
	for _, o := range r.overlays {
		hide := o.Has(models.CapabilityDefaultHide)
		if v, ok := r.params.ForceHide[o.Name]; ok {
			hide = v
		}
		r.overlayParam(o.Name, ParamForceHide, hide)
	}
}
