package main

import (
	"fmt"

	revisehttp "github.com/fwojciec/revise/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := revisehttp.NewServer()
	s.Addr = deps.Config.Addr
	s.Batch = deps.Batch
	s.Progress = deps.Progress
	s.Logger = deps.Logger

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	fmt.Fprintf(deps.Stdout, "listening on %s\n", s.URL())

	<-deps.Ctx.Done()
	return s.Close()
}
