package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins are not supported on windows")
	}
}

// writePlugin creates dir/name with a plugin.json manifest and, when script is
// not empty, an executable run.sh.
func writePlugin(t *testing.T, dir string, m Manifest, script string) string {
	t.Helper()

	pluginDir := filepath.Join(dir, m.Name)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if script != "" {
		m.Executable = "run.sh"
		if err := os.WriteFile(filepath.Join(pluginDir, "run.sh"), []byte(script), 0o755); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func scriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Plugin{
		Manifest:   Manifest{Name: "script", Executable: "run.sh"},
		Path:       dir,
		Executable: path,
	}
}
