package procexec_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/procexec"
	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/service/dao"
	"github.com/viant/procexec/service/event"
	"github.com/viant/procexec/service/image/imagetest"
	"github.com/viant/procexec/service/resource"
	"github.com/viant/procexec/service/scheduler"
)

const binURL = "mem://localhost/procexec_test/bin/app"

func newService(t *testing.T, config *procexec.Config, options ...procexec.Option) *procexec.Service {
	ctx := context.Background()
	fs := afs.New()
	image := imagetest.ELF32(8192, 0x80000000, 0x80000010, 0x90)
	assert.NoError(t, fs.Upload(ctx, binURL, file.DefaultFileOsMode, bytes.NewReader(image)))
	options = append([]procexec.Option{
		procexec.WithResources(resource.New(resource.WithFs(fs), resource.WithConsole(nil, &bytes.Buffer{}))),
		procexec.WithSection(scheduler.NewSection()),
	}, options...)
	srv, err := procexec.NewFromConfig(config, options...)
	assert.NoError(t, err)
	return srv
}

func TestService_Execute(t *testing.T) {
	srv := newService(t, nil)
	ctx := context.Background()

	srv.Execute(ctx, binURL, "file:///home", []string{"a"})
	srv.Execute(ctx, "mem://localhost/procexec_test/bin/missing", "file:///home", nil)

	contexts := srv.Contexts()
	assert.Len(t, contexts, 1)
	assert.Equal(t, binURL, contexts[0].Path)
	assert.EqualValues(t, 0x80000010, contexts[0].Entry)
	assert.Len(t, contexts[0].Files, 3)
}

func TestService_CreatedListener(t *testing.T) {
	created := make(chan *event.Event[execution.Snapshot], 2)
	srv := newService(t, nil, procexec.WithCreatedListener(func(e *event.Event[execution.Snapshot]) {
		created <- e
	}))
	defer srv.Shutdown()

	srv.Execute(context.Background(), binURL, "file:///home", []string{"a"})
	srv.Execute(context.Background(), "mem://localhost/procexec_test/bin/missing", "file:///home", nil)

	select {
	case e := <-created:
		assert.Equal(t, event.TypeCreated, e.Context.EventType)
		assert.Equal(t, srv.Contexts()[0].ID, e.Context.ContextID)
		assert.Equal(t, binURL, e.Data.Path)
		assert.Equal(t, []string{"a"}, e.Data.Args)
	case <-time.After(time.Second):
		t.Fatal("created event was not delivered")
	}
	select {
	case e := <-created:
		t.Fatalf("unexpected event for %v", e.Data.Path)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestService_CreatedListenerStopped(t *testing.T) {
	config := procexec.DefaultConfig()
	config.Queue.QueueBuffer = 4
	srv := newService(t, config, procexec.WithCreatedListener(func(e *event.Event[execution.Snapshot]) {}))
	srv.Shutdown()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3*config.Queue.QueueBuffer; i++ {
			srv.Execute(context.Background(), binURL, "file:///", nil)
		}
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("Execute blocked after %d contexts", len(srv.Contexts()))
	}
	assert.Len(t, srv.Contexts(), 3*config.Queue.QueueBuffer)
}

func TestService_Spawn(t *testing.T) {
	srv := newService(t, nil)
	ctx := context.Background()
	assert.NoError(t, srv.Start(ctx))
	defer srv.Shutdown()

	for i := 0; i < 5; i++ {
		assert.NoError(t, srv.Spawn(ctx, binURL, "file:///", []string{"worker"}))
	}
	assert.Error(t, srv.Spawn(ctx, "", "file:///", nil))
	assert.Eventually(t, func() bool { return len(srv.Contexts()) == 5 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return srv.Scheduler().Current() != nil }, time.Second, time.Millisecond)
}

func TestService_Snapshot(t *testing.T) {
	testCases := []struct {
		description string
		snapshotURL string
	}{
		{description: "memory store"},
		{description: "file store", snapshotURL: "mem://localhost/procexec_test/snapshots"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			config := procexec.DefaultConfig()
			config.SnapshotURL = tc.snapshotURL
			srv := newService(t, config)
			ctx := context.Background()
			srv.Execute(ctx, binURL, "file:///a", nil)
			srv.Execute(ctx, binURL, "file:///b", []string{"x", "y"})

			records, err := srv.Snapshot(ctx)
			assert.NoError(t, err)
			assert.Len(t, records, 2)

			records, err = srv.Snapshot(ctx, dao.NewParameter("Cwd", "file:///b"))
			assert.NoError(t, err)
			if assert.Len(t, records, 1) {
				assert.Equal(t, []string{"x", "y"}, records[0].Args)
				assert.Equal(t, []int{0, 1, 2}, records[0].FDs)
				assert.Equal(t, execution.StateReady, records[0].State)
				assert.Len(t, records[0].Stack, 6)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PROCEXEC_TEST_DIR", "tmpdir")
	ctx := context.Background()
	fs := afs.New()
	testCases := []struct {
		description string
		document    string
		expectErr   bool
		verify      func(t *testing.T, config *procexec.Config)
	}{
		{
			description: "overrides defaults",
			document: `loader:
  virtualAddress: 0x40000000
  debug: true
memory:
  size: 1048576
scheduler:
  quantum: 5ms
processor:
  workers: 4
snapshotURL: mem://localhost/snapshots
`,
			verify: func(t *testing.T, config *procexec.Config) {
				assert.EqualValues(t, 0x40000000, config.Loader.VirtualAddress)
				assert.EqualValues(t, 4096, config.Loader.HeaderSize)
				assert.Equal(t, "debug://", config.Loader.ConsoleURL)
				assert.True(t, config.Loader.Debug)
				assert.EqualValues(t, 1048576, config.Memory.Size)
				assert.Equal(t, 5*time.Millisecond, config.Scheduler.Quantum)
				assert.Equal(t, 4, config.Processor.WorkerCount)
				assert.Equal(t, 64, config.Queue.QueueBuffer)
				assert.Equal(t, "mem://localhost/snapshots", config.SnapshotURL)
			},
		},
		{
			description: "environment references",
			document:    "snapshotURL: mem://localhost/${env.PROCEXEC_TEST_DIR}/snapshots\n",
			verify: func(t *testing.T, config *procexec.Config) {
				assert.Equal(t, "mem://localhost/tmpdir/snapshots", config.SnapshotURL)
				assert.Equal(t, 2, config.Processor.WorkerCount)
			},
		},
		{description: "invalid value", document: "processor:\n  workers: 0\n", expectErr: true},
		{description: "malformed", document: "loader: [", expectErr: true},
	}
	for i, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			URL := "mem://localhost/procexec_test/config" + strings.Repeat("x", i) + ".yaml"
			assert.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(tc.document)))
			config, err := procexec.LoadConfig(ctx, URL)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			tc.verify(t, config)
		})
	}

	_, err := procexec.LoadConfig(ctx, "mem://localhost/procexec_test/absent.yaml")
	assert.Error(t, err)
}

func TestNewFromConfig_Invalid(t *testing.T) {
	config := procexec.DefaultConfig()
	config.Loader.VirtualAddress = 0
	_, err := procexec.NewFromConfig(config)
	assert.Error(t, err)
}
