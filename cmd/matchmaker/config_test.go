package main

import (
	"io"
	"log"
	"os"
	"testing"
	"time"
)

func TestNewCmd(t *testing.T) {
	unsetenv(t, "ADDR", "SECRET", "MATCH_PERIOD", "TOKEN_VALID_FOR", "DEBUG")
	newCmdTests := []struct {
		args []string
		want config
	}{
		{
			want: config{
				addr:          ":9091",
				matchPeriod:   100 * time.Millisecond,
				tokenValidFor: time.Hour,
			},
		},
		{
			args: []string{"--addr=:8080", "--secret=hunter2", "--match-period=50ms", "--token-valid-for=10m", "--debug"},
			want: config{
				addr:          ":8080",
				secret:        "hunter2",
				matchPeriod:   50 * time.Millisecond,
				tokenValidFor: 10 * time.Minute,
				debug:         true,
			},
		},
	}
	for i, test := range newCmdTests {
		var cfg config
		cmd := newCmd(&cfg, testLogger())
		if err := cmd.Flags().Parse(test.args); err != nil {
			t.Errorf("Test %v: unwanted error parsing flags: %v", i, err)
			continue
		}
		if test.want != cfg {
			t.Errorf("Test %v:\nwanted: %+v\ngot:    %+v", i, test.want, cfg)
		}
	}
}

func TestNewCmdEnv(t *testing.T) {
	t.Setenv("ADDR", ":8081")
	t.Setenv("SECRET", "hunter2")
	t.Setenv("MATCH_PERIOD", "1s")
	t.Setenv("TOKEN_VALID_FOR", "30m")
	t.Setenv("DEBUG", "true")
	var cfg config
	newCmd(&cfg, testLogger())
	want := config{
		addr:          ":8081",
		secret:        "hunter2",
		matchPeriod:   time.Second,
		tokenValidFor: 30 * time.Minute,
		debug:         true,
	}
	if want != cfg {
		t.Errorf("wanted %+v, got %+v", want, cfg)
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// unsetenv removes the environment variables until the test ends.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
