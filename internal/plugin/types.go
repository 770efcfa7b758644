// Package plugin discovers and runs external effect renderers for mudra.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// The executable receives one JSON Request on stdin and answers with one JSON
// Response on stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and the effect tags it renders.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	Effects      []string        `json:"effects"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Renders reports whether the manifest declares the effect tag.
func (m Manifest) Renders(tag string) bool {
	for _, e := range m.Effects {
		if e == tag {
			return true
		}
	}
	return false
}

// Request is sent to a plugin when an effect starts.
type Request struct {
	Action    string          `json:"action"`
	Effect    string          `json:"effect"`
	ComboID   string          `json:"combo_id"`
	SessionID string          `json:"session_id"`
	Config    json.RawMessage `json:"config,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Response is the plugin's answer to a Request.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
