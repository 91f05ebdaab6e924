package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func newTestSerializer(t *testing.T) *Serializer {
	t.Helper()
	s := NewSerializer("test", slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s.Start(context.Background())
	t.Cleanup(s.Stop)
	return s
}

func TestSerializerRunsJobsOneAtATime(t *testing.T) {
	s := newTestSerializer(t)

	var (
		active, maxActive int
		total             int
		mu                sync.Mutex
		wg                sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Do(context.Background(), func() error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				total++
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("expected at most one concurrent job, got %d", maxActive)
	}
	if total != 20 {
		t.Fatalf("expected 20 jobs, got %d", total)
	}
}

func TestSerializerReturnsJobError(t *testing.T) {
	s := newTestSerializer(t)
	want := errors.New("disk full")
	if err := s.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestSerializerRecoversPanics(t *testing.T) {
	s := newTestSerializer(t)
	err := s.Do(context.Background(), func() error { panic("boom") })
	if err == nil {
		t.Fatal("expected error from panicking job")
	}
	if err := s.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("serializer should keep running after panic, got %v", err)
	}
}

func TestSerializerReadWaitsForWrite(t *testing.T) {
	s := newTestSerializer(t)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	readDone := make(chan struct{})
	go func() {
		_ = s.Read(func() error { return nil })
		close(readDone)
	}()

	select {
	case <-readDone:
		t.Fatal("read should block while write is running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-readDone:
	case <-time.After(time.Second):
		t.Fatal("read did not complete after write finished")
	}
}

func TestSerializerDoAfterStop(t *testing.T) {
	s := NewSerializer("test", nil)
	s.Start(context.Background())
	s.Stop()
	s.Stop()

	if err := s.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestSerializerDoHonoursContext(t *testing.T) {
	s := NewSerializer("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Do(ctx, func() error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
