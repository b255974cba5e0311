package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aaearon/authlive/internal/clipboard"
	"github.com/aaearon/authlive/internal/config"
	"github.com/aaearon/authlive/internal/countdown"
	"github.com/aaearon/authlive/internal/totp"
	"github.com/aaearon/authlive/internal/ui"
)

const (
	testSecret = "JBSWY3DPEHPK3PXP"
	testToken  = "367665"
)

func fixedEngine() *totp.Engine {
	return totp.NewEngineWithClock(func() time.Time { return time.Unix(1700000010, 0) })
}

func TestCodeCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		env         config.Env
		clipText    string
		prompter    *mockPrompter
		wantErr     error
		wantContain []string
	}{
		{
			name:        "secret from argument",
			args:        []string{"jbsw y3dp ehpk 3pxp"},
			prompter:    &mockPrompter{},
			wantContain: []string{testToken, "30s remaining"},
		},
		{
			name:        "secret from clipboard",
			args:        []string{"--paste"},
			clipText:    testSecret + "\n",
			prompter:    &mockPrompter{},
			wantContain: []string{testToken},
		},
		{
			name:        "secret from environment",
			env:         config.Env{Secret: testSecret},
			prompter:    &mockPrompter{},
			wantContain: []string{testToken},
		},
		{
			name:        "secret from prompt",
			prompter:    &mockPrompter{secret: testSecret},
			wantContain: []string{testToken},
		},
		{
			name:     "invalid secret",
			args:     []string{"not-base32!"},
			prompter: &mockPrompter{},
			wantErr:  totp.ErrInvalidSecret,
		},
		{
			name:     "empty clipboard",
			args:     []string{"--paste"},
			prompter: &mockPrompter{},
			wantErr:  clipboard.ErrRead,
		},
		{
			name:     "prompt without terminal",
			prompter: &mockPrompter{promptErr: ui.ErrNotInteractive},
			wantErr:  ui.ErrNotInteractive,
		},
		{
			name:     "blank prompt answer",
			prompter: &mockPrompter{secret: "   "},
			wantErr:  errNoSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := &clipboard.Memory{}
			if tt.clipText != "" {
				_ = clip.WriteText(tt.clipText)
			}

			root := newTestRootCommand()
			root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), clip, tt.prompter, tt.env))

			output, err := executeCommand(root, append([]string{"code"}, tt.args...)...)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v\noutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q\ngot:\n%s", want, output)
				}
			}
		})
	}
}

func TestCodeCommand_InvalidSecretMessage(t *testing.T) {
	root := newTestRootCommand()
	root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), &clipboard.Memory{}, &mockPrompter{}, config.Env{}))

	_, err := executeCommand(root, "code", "1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if want := "Invalid secret key. Please check the key and try again."; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestCodeCommand_ArgumentWinsOverOtherSources(t *testing.T) {
	clip := &clipboard.Memory{}
	_ = clip.WriteText("not a secret")
	prompter := &mockPrompter{}

	root := newTestRootCommand()
	root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), clip, prompter, config.Env{Secret: "AAAA"}))

	output, err := executeCommand(root, "code", testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, testToken) {
		t.Errorf("output missing %q\ngot:\n%s", testToken, output)
	}
	if prompter.prompted {
		t.Error("prompt should not be shown when a secret argument is given")
	}
}

func TestCodeCommand_Copy(t *testing.T) {
	clip := &clipboard.Memory{}
	root := newTestRootCommand()
	root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), clip, &mockPrompter{}, config.Env{}))

	stdout, stderr, err := executeCommandSplit(root, "code", testSecret, "--copy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := clip.ReadText(); got != testToken {
		t.Errorf("clipboard = %q, want %q", got, testToken)
	}
	if !strings.Contains(stdout, testToken) {
		t.Errorf("stdout missing token, got: %s", stdout)
	}
	if !strings.Contains(stderr, "Copied to clipboard.") {
		t.Errorf("stderr missing copy notice, got: %s", stderr)
	}
}

func TestCodeCommand_CopyDisabled(t *testing.T) {
	root := newTestRootCommand()
	root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), clipboard.Disabled{}, &mockPrompter{}, config.Env{}))

	_, err := executeCommand(root, "code", testSecret, "--copy")
	if !errors.Is(err, clipboard.ErrWrite) {
		t.Fatalf("error = %v, want ErrWrite", err)
	}
	if want := "Failed to copy token to clipboard."; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestCodeCommand_JSONOutput(t *testing.T) {
	root := newTestRootCommand()
	root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), &clipboard.Memory{}, &mockPrompter{}, config.Env{}))

	output, err := executeCommand(root, "code", testSecret, "--output", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed tokenOutput
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if parsed.Token != testToken {
		t.Errorf("token = %q, want %q", parsed.Token, testToken)
	}
	if parsed.Remaining != 30 || parsed.Period != 30 {
		t.Errorf("remaining/period = %d/%d, want 30/30", parsed.Remaining, parsed.Period)
	}
}

func TestCodeCommand_InvalidOutputFormat(t *testing.T) {
	root := newTestRootCommand()
	root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), &clipboard.Memory{}, &mockPrompter{}, config.Env{}))

	_, err := executeCommand(root, "code", testSecret, "--output", "yaml")
	if err == nil || !strings.Contains(err.Error(), "invalid output format") {
		t.Fatalf("error = %v, want invalid output format", err)
	}
}

func TestCodeCommand_WatchStopsOnCancel(t *testing.T) {
	root := newTestRootCommand()
	root.AddCommand(NewCodeCommandWithDeps(fixedEngine(), &clipboard.Memory{}, &mockPrompter{}, config.Env{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root.SetContext(ctx)

	output, err := executeCommand(root, "code", testSecret, "--watch")
	if err != nil {
		t.Fatalf("cancelled watch should not error, got: %v", err)
	}
	if strings.Count(output, testToken) != 1 {
		t.Errorf("expected exactly one code line, got:\n%s", output)
	}
}

func TestResolveSecret_DoesNotLogSecret(t *testing.T) {
	spy := &spyLogger{}
	oldLog := log
	log = spy
	defer func() { log = oldLog }()

	secret, err := resolveSecret([]string{testSecret}, false, config.Env{}, &clipboard.Memory{}, &mockPrompter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != testSecret {
		t.Errorf("secret = %q, want %q", secret, testSecret)
	}
	for _, msg := range spy.messages {
		if strings.Contains(msg, testSecret) {
			t.Errorf("log message leaks secret: %q", msg)
		}
	}
}

func TestWatchTick(t *testing.T) {
	at := time.Unix(1700000010, 0)
	tests := []struct {
		name       string
		secret     string
		tick       countdown.Tick
		wantOutput string
		wantLog    string
	}{
		{
			name:       "boundary prints the new code",
			secret:     testSecret,
			tick:       countdown.Tick{At: at, Remaining: 30, Boundary: true},
			wantOutput: testToken + " (30s remaining)\n",
		},
		{
			name:   "mid-period tick prints nothing",
			secret: testSecret,
			tick:   countdown.Tick{At: at.Add(5 * time.Second), Remaining: 25},
		},
		{
			name:    "generation failure is logged",
			secret:  "1",
			tick:    countdown.Tick{At: at, Remaining: 30, Boundary: true},
			wantLog: "Failed to generate code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyLogger{}
			oldLog := log
			log = spy
			defer func() { log = oldLog }()

			var out bytes.Buffer
			watchTick(&out, fixedEngine(), tt.secret, tt.tick)

			if out.String() != tt.wantOutput {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOutput)
			}
			if tt.wantLog == "" {
				if len(spy.messages) != 0 {
					t.Errorf("unexpected log messages: %v", spy.messages)
				}
				return
			}
			found := false
			for _, msg := range spy.messages {
				if strings.Contains(msg, tt.wantLog) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected log containing %q, got: %v", tt.wantLog, spy.messages)
			}
		})
	}
}
