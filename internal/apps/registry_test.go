package apps

import (
	"context"
	"fmt"
	"testing"

	"github.com/dialproto/godial/internal/dial"
)

func TestGetUnknownApp(t *testing.T) {
	r := NewRegistry(Entry{Name: "YouTube"})
	if app := r.Get(context.Background(), "Netflix"); app != nil {
		t.Errorf("Get() = %v, want nil for unhosted app", app)
	}
}

func TestLaunchAssignsSequentialPids(t *testing.T) {
	r := NewRegistry(Entry{Name: "YouTube", AllowStop: true})
	ctx := context.Background()

	pid1, err := r.Launch(ctx, "YouTube", []byte("v=1"))
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	pid2, err := r.Launch(ctx, "YouTube", nil)
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if pid1 == pid2 {
		t.Errorf("relaunch reused pid %q", pid1)
	}

	app := r.Get(ctx, "YouTube")
	if app == nil || app.Pid != pid2 {
		t.Errorf("Get() pid = %v, want %q", app, pid2)
	}
	if app.InferredState() != dial.AppRunning {
		t.Errorf("state = %v, want running", app.InferredState())
	}
}

func TestLaunchUnhostedApp(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Launch(context.Background(), "YouTube", nil); err == nil {
		t.Error("Launch() expected error for unhosted app")
	}
}

func TestLaunchHookError(t *testing.T) {
	r := NewRegistry(Entry{
		Name:     "YouTube",
		OnLaunch: func([]byte) (string, error) { return "", fmt.Errorf("boom") },
	})
	if _, err := r.Launch(context.Background(), "YouTube", nil); err == nil {
		t.Error("Launch() expected hook error")
	}
	if app := r.Get(context.Background(), "YouTube"); app.Pid != "" {
		t.Errorf("failed launch must not record a pid, got %q", app.Pid)
	}
}

func TestStopContract(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		entry   Entry
		launch  bool
		stopPid func(launched string) string
		want    bool
	}{
		{
			name:    "matching pid stops",
			entry:   Entry{Name: "X", AllowStop: true},
			launch:  true,
			stopPid: func(p string) string { return p },
			want:    true,
		},
		{
			name:    "mismatched pid fails",
			entry:   Entry{Name: "X", AllowStop: true},
			launch:  true,
			stopPid: func(string) string { return "other" },
			want:    false,
		},
		{
			name:    "stopped app fails",
			entry:   Entry{Name: "X", AllowStop: true},
			launch:  false,
			stopPid: func(string) string { return "run-1" },
			want:    false,
		},
		{
			name: "stop hook veto",
			entry: Entry{
				Name:   "X",
				OnStop: func(string) bool { return false },
			},
			launch:  true,
			stopPid: func(p string) string { return p },
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.entry)
			var pid string
			if tt.launch {
				var err error
				pid, err = r.Launch(ctx, "X", nil)
				if err != nil {
					t.Fatalf("Launch() error = %v", err)
				}
			}

			if got := r.Stop(ctx, "X", tt.stopPid(pid)); got != tt.want {
				t.Errorf("Stop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStopClearsPid(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(Entry{Name: "X", AllowStop: true})

	pid, _ := r.Launch(ctx, "X", nil)
	if !r.Stop(ctx, "X", pid) {
		t.Fatal("Stop() = false, want true")
	}

	app := r.Get(ctx, "X")
	if app.Pid != "" {
		t.Errorf("pid = %q, want empty after stop", app.Pid)
	}
	if app.InferredState() != dial.AppStopped {
		t.Errorf("state = %v, want stopped", app.InferredState())
	}
}
