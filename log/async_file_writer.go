package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AsyncFileWriter decouples log producers from disk latency: Write copies the
// record into a bounded channel and a single goroutine drains it into a
// size-rotated file. When the channel is full the record is dropped and
// counted rather than blocking the caller.
type AsyncFileWriter struct {
	filePath string
	out      io.WriteCloser

	wg      sync.WaitGroup
	started atomic.Bool
	dropped atomic.Uint64
	buf     chan []byte
	stop    chan struct{}
}

// NewAsyncFileWriter creates a writer for filePath. maxSizeMB is the size at
// which the file is rotated (0 uses the lumberjack default of 100MB),
// maxBackups the number of rotated files kept, and bufSize the number of
// records that may be queued.
func NewAsyncFileWriter(filePath string, maxSizeMB, maxBackups, bufSize int) *AsyncFileWriter {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		panic(fmt.Sprintf("get file path of logger error. filePath=%s, err=%s", filePath, err))
	}
	if bufSize <= 0 {
		bufSize = 1024
	}
	return &AsyncFileWriter{
		filePath: absFilePath,
		out: &lumberjack.Logger{
			Filename:   absFilePath,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		},
		buf:  make(chan []byte, bufSize),
		stop: make(chan struct{}),
	}
}

// Path returns the absolute path of the active log file.
func (w *AsyncFileWriter) Path() string {
	return w.filePath
}

func (w *AsyncFileWriter) Start() error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("logger has already been started")
	}
	w.wg.Add(1)
	go func() {
		defer func() {
			w.flushBuffer()
			if err := w.out.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "close log file error. err=%s\n", err)
			}
			w.started.Store(false)
			w.wg.Done()
		}()

		for {
			select {
			case msg := <-w.buf:
				w.syncWrite(msg)
			case <-w.stop:
				return
			}
		}
	}()
	return nil
}

func (w *AsyncFileWriter) flushBuffer() {
	for {
		select {
		case msg := <-w.buf:
			w.syncWrite(msg)
		default:
			return
		}
	}
}

func (w *AsyncFileWriter) syncWrite(msg []byte) {
	if _, err := w.out.Write(msg); err != nil {
		fmt.Fprintf(os.Stderr, "write log file error. err=%s\n", err)
	}
}

// Stop drains queued records, closes the file and waits for the writer
// goroutine to exit. It is a no-op if the writer was never started.
func (w *AsyncFileWriter) Stop() {
	if !w.started.Load() {
		return
	}
	w.stop <- struct{}{}
	w.wg.Wait()
}

// Write queues a copy of msg. It never blocks.
func (w *AsyncFileWriter) Write(msg []byte) (n int, err error) {
	buf := make([]byte, len(msg))
	copy(buf, msg)

	select {
	case w.buf <- buf:
	default:
		w.dropped.Add(1)
	}
	return len(msg), nil
}

// Dropped returns the number of records discarded because the queue was full.
func (w *AsyncFileWriter) Dropped() uint64 {
	return w.dropped.Load()
}
