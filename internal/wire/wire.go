// Package wire serves partial completion requests as newline-delimited JSON.
//
// Every request line is answered with exactly one response line:
//
//	{"partial": ["search for", {"nt": "np"}]}       -> {"candidates": [["search for", "a cat"], ...]}
//	{"derivation": {...}, "sentence": "search for a cat"} -> {"program": "..."}
//
// Failures, including malformed lines, are answered with {"err": "..."}.
package wire

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/ava12/sentgen/generator"
	"github.com/ava12/sentgen/tree"
)

const DefaultMaxLineSize = 1 << 20

type Request struct {
	Partial    []generator.Item `json:"partial,omitempty"`
	Derivation *tree.Node       `json:"derivation,omitempty"`
	Sentence   string           `json:"sentence,omitempty"`
}

type CandidatesResponse struct {
	Candidates [][]generator.Item `json:"candidates"`
}

type ProgramResponse struct {
	Program string `json:"program"`
}

type ErrorResponse struct {
	Err string `json:"err"`
}

var errEmptyRequest = errors.New("request contains neither partial nor derivation")

type Server struct {
	gen         *generator.Generator
	logger      *zap.Logger
	maxLineSize int
}

// NewServer creates a server answering requests with gen.
// logger may be nil; maxLineSize <= 0 means DefaultMaxLineSize.
func NewServer(gen *generator.Generator, logger *zap.Logger, maxLineSize int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}
	return &Server{gen, logger, maxLineSize}
}

// Handle answers a single request line.
func (s *Server) Handle(line []byte) any {
	var req Request
	e := json.Unmarshal(line, &req)
	if e != nil {
		return s.fail("malformed request", e)
	}

	switch {
	case req.Partial != nil:
		candidates, e := s.gen.NextStepExpansion(req.Partial)
		if e != nil {
			return s.fail("partial expansion failed", e)
		}
		s.logger.Debug("partial expanded", zap.Int("candidates", len(candidates)))
		return CandidatesResponse{candidates}

	case req.Derivation != nil:
		program, e := s.gen.ProgramFromTree(req.Derivation)
		if e != nil {
			return s.fail("failed to build program", e, zap.String("sentence", req.Sentence))
		}
		s.logger.Debug("program built", zap.String("sentence", req.Sentence), zap.String("program", program))
		return ProgramResponse{program}

	default:
		return s.fail("empty request", errEmptyRequest)
	}
}

func (s *Server) fail(msg string, e error, fields ...zap.Field) ErrorResponse {
	s.logger.Warn(msg, append(fields, zap.Error(e))...)
	return ErrorResponse{e.Error()}
}

// Serve answers requests read from r until r is exhausted or ctx is cancelled.
// Blank lines are ignored. Returns nil on end of input.
// A read blocked at cancellation time is abandoned and finishes when r is closed.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 4096), s.maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			e := enc.Encode(s.Handle(line))
			if e != nil {
				return e
			}
		}
	}
}
