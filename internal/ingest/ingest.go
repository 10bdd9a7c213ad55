package ingest

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/nxadm/tail"

	"github.com/dotswift/Pulse/internal/model"
)

type SourceKind string

const (
	SourceStdin SourceKind = "stdin"
	SourceFile  SourceKind = "file"
	SourceDemo  SourceKind = "demo"
)

type Options struct {
	Source      SourceKind
	Path        string
	Follow      bool
	ScanBufSize int // per-line max (bytes)
}

// Read streams entity records from the configured source. Each line of input
// is decoded into a model.Entity; the kind is resolved here, once, and never
// re-derived downstream. Both channels close when the source drains or the
// context is cancelled.
func Read(ctx context.Context, opt Options) (<-chan model.Entity, <-chan error) {
	out := make(chan model.Entity, 1024)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		switch opt.Source {
		case SourceStdin:
			readFromReader(ctx, os.Stdin, "stdin", opt.ScanBufSize, out, errs)
		case SourceFile:
			if opt.Follow {
				readFromTail(ctx, opt.Path, out, errs)
			} else {
				f, err := os.Open(opt.Path)
				if err != nil {
					errs <- err
					return
				}
				defer f.Close()
				readFromReader(ctx, f, opt.Path, opt.ScanBufSize, out, errs)
			}
		case SourceDemo:
			demo(ctx, out)
		default:
			errs <- errors.New("unknown source kind")
		}
	}()

	return out, errs
}

func readFromReader(ctx context.Context, r io.Reader, src string, maxBuf int, out chan<- model.Entity, errs chan<- error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 1024*64)
	if maxBuf <= 0 {
		maxBuf = 1024 * 1024
	}
	scanner.Buffer(buf, maxBuf)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		out <- Decode(scanner.Text(), src)
	}
	if err := scanner.Err(); err != nil {
		errs <- err
	}
}

func readFromTail(ctx context.Context, path string, out chan<- model.Entity, errs chan<- error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
		Poll:      true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
	})
	if err != nil {
		errs <- err
		return
	}
	defer t.Cleanup()
	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case l, ok := <-t.Lines:
			if !ok {
				return
			}
			if l.Err != nil {
				errs <- l.Err
				continue
			}
			out <- Decode(l.Text, path)
		}
	}
}

func demo(ctx context.Context, out chan<- model.Entity) {
	g := NewDemoGenerator()
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out <- g.Next()
		}
	}
}
