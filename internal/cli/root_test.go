package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lydakis/hostbridge/internal/host"
	"github.com/lydakis/hostbridge/internal/paths"
	"github.com/lydakis/hostbridge/internal/response"
)

// lockedBuffer is written by background goroutines while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr lockedBuffer
	code := run(args, strings.NewReader(""), true, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// isolate points the config and cache directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeTestConfig(t *testing.T, raw string) {
	t.Helper()
	if err := paths.EnsureDir(paths.ConfigDir()); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := os.WriteFile(paths.ConfigFile(), []byte(raw), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// startHost serves the corridor plan and writes a config pointing at it.
func startHost(t *testing.T) {
	t.Helper()
	isolate(t)

	doc, err := host.LoadPlan("../host/testdata/corridor.toml")
	if err != nil {
		t.Fatalf("LoadPlan() error = %v", err)
	}
	exec := host.NewExecutor(doc, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		exec.Run(ctx) //nolint: errcheck
	}()

	srv := host.NewServer("127.0.0.1:0", "/", host.NewDispatcher(exec, nil).Handle, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		cancel()
		<-done
	})

	addr, port, err := net.SplitHostPort(srv.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort() error = %v", err)
	}
	writeTestConfig(t, fmt.Sprintf(`
[host]
address = %q
port = %s

[channel]
connect_timeout = "5s"
reconnect_interval = "50ms"

[cache]
enabled = true

[log]
level = "error"
`, addr, port))
}

func TestRunVersion(t *testing.T) {
	res := runCLI(t, "--version")
	if res.code != response.ExitOK {
		t.Fatalf("exit code = %d, want 0", res.code)
	}
	if res.stdout != "hostbridge "+buildVersion+"\n" {
		t.Fatalf("stdout = %q", res.stdout)
	}
}

func TestResolveBuildVersionHonorsInjectedValue(t *testing.T) {
	if got := resolveBuildVersion("v1.2.3"); got != "v1.2.3" {
		t.Fatalf("resolveBuildVersion() = %q, want %q", got, "v1.2.3")
	}
}

func TestRunUsageErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"frobnicate"}},
		{"unknown flag", []string{"tools", "--bogus"}},
		{"extra args", []string{"tools", "extra"}},
		{"unknown tool", []string{"call", "create_floor"}},
		{"bad call flags", []string{"call", "get_wall_info", "-x"}},
		{"bad log level", []string{"--log-level", "loud", "call", "get_project_info"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			if res.code != response.ExitUsageErr {
				t.Fatalf("exit code = %d, want %d (stderr %q)", res.code, response.ExitUsageErr, res.stderr)
			}
			if !strings.HasPrefix(res.stderr, "hostbridge: ") {
				t.Fatalf("stderr = %q, want hostbridge: prefix", res.stderr)
			}
		})
	}
}

func TestRunInvalidConfigIsUsageError(t *testing.T) {
	isolate(t)
	writeTestConfig(t, "[host]\nport = 0\n")

	res := runCLI(t, "call", "get_project_info")
	if res.code != response.ExitUsageErr {
		t.Fatalf("exit code = %d, want %d (stderr %q)", res.code, response.ExitUsageErr, res.stderr)
	}
	if !strings.Contains(res.stderr, "invalid config") {
		t.Fatalf("stderr = %q", res.stderr)
	}
}

func TestRunInitWritesConfigOnce(t *testing.T) {
	isolate(t)

	res := runCLI(t, "init")
	if res.code != response.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", res.code, res.stderr)
	}
	if _, err := os.Stat(paths.ConfigFile()); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	res = runCLI(t, "init")
	if res.code != response.ExitUsageErr {
		t.Fatalf("second init exit code = %d, want %d", res.code, response.ExitUsageErr)
	}

	custom := filepath.Join(t.TempDir(), "custom.toml")
	if res = runCLI(t, "--config", custom, "init"); res.code != response.ExitOK {
		t.Fatalf("init --config exit code = %d, stderr %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, custom) {
		t.Fatalf("stdout = %q, want path %s", res.stdout, custom)
	}
}

func TestRunToolsListsEveryTool(t *testing.T) {
	res := runCLI(t, "tools")
	if res.code != response.ExitOK {
		t.Fatalf("exit code = %d", res.code)
	}
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 13 {
		t.Fatalf("got %d tools:\n%s", len(lines), res.stdout)
	}
	if !strings.HasPrefix(lines[0], "create_corridor_dimensions\t") {
		t.Fatalf("first line = %q", lines[0])
	}

	res = runCLI(t, "tools", "--json")
	if !strings.Contains(res.stdout, `"name": "get_room_info"`) {
		t.Fatalf("json output = %q", res.stdout)
	}
}

func TestRunCallHelpNeedsNoHost(t *testing.T) {
	isolate(t)
	res := runCLI(t, "call", "get_wall_info", "--help")
	if res.code != response.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "--wallId <integer> (required)") {
		t.Fatalf("stdout = %q", res.stdout)
	}
}

func TestRunCallAgainstHost(t *testing.T) {
	startHost(t)

	res := runCLI(t, "call", "get_wall_info", "--wallId", "11")
	if res.code != response.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, `"ElementId":11`) {
		t.Fatalf("stdout = %q", res.stdout)
	}

	res = runCLI(t, "call", "get_wall_info", `{"wallId":404}`)
	if res.code != response.ExitToolErr {
		t.Fatalf("exit code = %d, want %d", res.code, response.ExitToolErr)
	}
	if res.stdout != "" || !strings.Contains(res.stderr, "no wall with id 404") {
		t.Fatalf("stdout = %q, stderr = %q", res.stdout, res.stderr)
	}

	res = runCLI(t, "call", "get_wall_info", "--wallId", "404", "-q")
	if res.code != response.ExitToolErr || res.stderr != "" {
		t.Fatalf("quiet: exit code = %d, stderr = %q", res.code, res.stderr)
	}

	res = runCLI(t, "call", "get_wall_info")
	if res.code != response.ExitUsageErr {
		t.Fatalf("missing arg: exit code = %d, want %d (stderr %q)", res.code, response.ExitUsageErr, res.stderr)
	}
}

func TestRunCorridorAgainstHost(t *testing.T) {
	startHost(t)

	res := runCLI(t, "corridor", "--x", "1727", "--y", "16300", "--no-centerline")
	if res.code != response.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, `"NetWidth":5050`) {
		t.Fatalf("stdout = %q", res.stdout)
	}
	if strings.Contains(res.stdout, `"CenterlineDimension":{`) {
		t.Fatalf("centerline created despite --no-centerline: %q", res.stdout)
	}

	res = runCLI(t, "corridor", "--x", "1727")
	if res.code != response.ExitUsageErr {
		t.Fatalf("half a center: exit code = %d, want %d", res.code, response.ExitUsageErr)
	}

	res = runCLI(t, "corridor", "--x", "100000", "--y", "0")
	if res.code != response.ExitToolErr {
		t.Fatalf("no walls: exit code = %d, want %d (stderr %q)", res.code, response.ExitToolErr, res.stderr)
	}
}

func TestRunUnreachableHostIsInternalError(t *testing.T) {
	isolate(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	writeTestConfig(t, fmt.Sprintf(`
[host]
address = "127.0.0.1"
port = %s

[channel]
connect_timeout = "300ms"
reconnect_interval = "50ms"

[log]
level = "error"
`, port))

	res := runCLI(t, "call", "get_project_info")
	if res.code != response.ExitInternal {
		t.Fatalf("exit code = %d, want %d (stderr %q)", res.code, response.ExitInternal, res.stderr)
	}
	if !strings.Contains(res.stderr, "host connection error") {
		t.Fatalf("stderr = %q", res.stderr)
	}
}

func TestRunHostMissingPlan(t *testing.T) {
	isolate(t)
	res := runCLI(t, "host", "--plan", filepath.Join(t.TempDir(), "missing.toml"))
	if res.code != response.ExitUsageErr {
		t.Fatalf("exit code = %d, want %d (stderr %q)", res.code, response.ExitUsageErr, res.stderr)
	}
}

func TestRunServeAnswersOverStdio(t *testing.T) {
	isolate(t)
	writeTestConfig(t, `
[host]
address = "127.0.0.1"
port = 1

[channel]
reconnect_interval = "50ms"

[log]
level = "error"
`)

	stdinR, stdinW := io.Pipe()
	var stdout, stderr lockedBuffer
	done := make(chan int, 1)
	go func() {
		done <- run([]string{"serve"}, stdinR, false, &stdout, &stderr)
	}()

	requests := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"cli-test","version":"0.1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}
	for _, req := range requests {
		if _, err := io.WriteString(stdinW, req+"\n"); err != nil {
			t.Fatalf("writing request: %v", err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stdout.String(), "create_corridor_dimensions") {
		if time.Now().After(deadline) {
			t.Fatalf("no tools/list reply; stdout %q stderr %q", stdout.String(), stderr.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(stdout.String(), `"name":"hostbridge"`) {
		t.Fatalf("initialize reply missing server info: %q", stdout.String())
	}

	stdinW.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not exit after stdin closed")
	}
}
