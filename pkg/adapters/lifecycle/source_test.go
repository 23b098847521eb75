package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harp/pkg/adapters/lifecycle"
	"github.com/aretw0/harp/pkg/core"
)

func TestSource_Forwards(t *testing.T) {
	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, ID: "a"}
	in <- core.Event{Type: core.EventModify, ID: "b"}
	in <- core.Event{Type: core.EventDelete, ID: "a"}
	close(in)

	src := lifecycle.NewSource(in, lifecycle.WithFilter(func(e core.Event) bool {
		return e.ID == "a"
	}))
	require.NoError(t, src.Start(context.Background()))

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-src.Events():
			if !ok {
				assert.Equal(t, []string{"CREATE a", "DELETE a"}, got)
				return
			}
			got = append(got, e.String())
		case <-timeout:
			t.Fatal("source did not close")
		}
	}
}

func TestSource_StopsWithContext(t *testing.T) {
	in := make(chan core.Event)
	ctx, cancel := context.WithCancel(context.Background())

	src := lifecycle.NewSource(in)
	require.NoError(t, src.Start(ctx))
	cancel()

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not close after cancel")
	}
}
