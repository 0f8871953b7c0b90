package server

import (
	"errors"
	"fmt"

	"github.com/chazu/zzed/editor"
)

var errWorkerStopped = errors.New("edit worker stopped")

// editRequest represents a unit of work to be executed on the edit goroutine.
type editRequest struct {
	fn   func(*editor.Session) interface{}
	done chan editResult
}

// editResult holds the return value from an edit operation.
type editResult struct {
	value interface{}
	err   error
}

// EditWorker serializes all load/save work on the game database through a
// single goroutine. A save reads the row, compiles and writes it back;
// running two of those concurrently on the same row would lose one of the
// edits, and SQLite rejects overlapping writers anyway.
type EditWorker struct {
	session  *editor.Session
	requests chan editRequest
	quit     chan struct{}
}

// NewEditWorker creates an EditWorker and starts the processing goroutine.
func NewEditWorker(session *editor.Session) *EditWorker {
	w := &EditWorker{
		session:  session,
		requests: make(chan editRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes edit requests sequentially on a dedicated goroutine.
func (w *EditWorker) loop() {
	for {
		select {
		case req := <-w.requests:
			result := w.execute(req.fn)
			req.done <- result
		case <-w.quit:
			return
		}
	}
}

// execute runs a function on the session, recovering from panics.
func (w *EditWorker) execute(fn func(*editor.Session) interface{}) editResult {
	var result editResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn(w.session)
	}()
	return result
}

// Do submits a function for execution on the edit goroutine and blocks
// until it completes. Returns the result and any error (including panics).
func (w *EditWorker) Do(fn func(*editor.Session) interface{}) (interface{}, error) {
	req := editRequest{
		fn:   fn,
		done: make(chan editResult, 1),
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, errWorkerStopped
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, errWorkerStopped
	}
}

// Stop shuts down the worker goroutine.
func (w *EditWorker) Stop() {
	close(w.quit)
}
