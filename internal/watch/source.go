package watch

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/sentinelstack/audit-sentinel/internal/utils"
)

// Lines streams whole lines from r on a channel. The channel closes when the
// reader reaches EOF or errors, or when ctx is cancelled, so the goroutine
// never outlives an abandoned receiver.
func Lines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case out <- scanner.Text():
			}
		}
	}()
	return out
}

// FollowFile tails path: existing content is streamed first, then new lines
// are emitted as the file grows. Truncation resets the read offset to the
// new end of file. The channel closes when ctx is cancelled.
func FollowFile(ctx context.Context, path string, logger *slog.Logger) (<-chan string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, utils.NewAppError("watch.follow", "open input file", err)
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, utils.NewAppError("watch.follow", "create file watcher", err)
	}
	if err := notifier.Add(path); err != nil {
		notifier.Close()
		file.Close()
		return nil, utils.NewAppError("watch.follow", "watch input file", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer notifier.Close()
		defer file.Close()

		follower := &fileFollower{file: file, out: out}
		follower.drain(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-notifier.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) {
					follower.drain(ctx)
				}
			case err, ok := <-notifier.Errors:
				if !ok {
					return
				}
				logger.Warn("file watch error", slog.Any("error", err))
			}
		}
	}()
	return out, nil
}

// fileFollower reads newly appended bytes from a file, buffering partial
// lines across drains so half-written entries are never emitted.
type fileFollower struct {
	file    *os.File
	out     chan<- string
	partial strings.Builder
	offset  int64
}

func (f *fileFollower) drain(ctx context.Context) {
	info, err := f.file.Stat()
	if err != nil {
		return
	}
	if info.Size() < f.offset {
		// Truncated; restart from the new end.
		f.offset = info.Size()
		f.partial.Reset()
		return
	}

	if _, err := f.file.Seek(f.offset, io.SeekStart); err != nil {
		return
	}
	reader := bufio.NewReader(f.file)
	for {
		chunk, err := reader.ReadString('\n')
		f.offset += int64(len(chunk))
		if err != nil {
			f.partial.WriteString(chunk)
			return
		}
		line := f.partial.String() + strings.TrimRight(chunk, "\n")
		f.partial.Reset()
		select {
		case <-ctx.Done():
			return
		case f.out <- line:
		}
	}
}
