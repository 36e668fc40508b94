package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/fwojciec/revise"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		return err
	}

	extractor := deps.Extractor
	if c.Generic {
		extractor = deps.Generic
	}

	result, err := extractor.Extract(html)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		return err
	}
	if result.Empty() {
		err := revise.Errorf(revise.EEMPTY, "no article_title or article_body found at %s", c.URL)
		fmt.Fprintf(deps.Stderr, "error: %s\n", revise.ErrorMessage(err))
		if !c.Generic {
			fmt.Fprintln(deps.Stderr, "Hint: try --generic to see what the page's main text looks like")
		}
		return err
	}

	content := revise.ComposeContent(result.Title, result.Body, deps.Config.MaxContentLength)
	fmt.Fprintf(deps.Stdout, "title:    %s\n", result.Title)
	fmt.Fprintf(deps.Stdout, "strategy: %s\n", result.Strategy)
	fmt.Fprintf(deps.Stdout, "length:   %d\n\n", utf8.RuneCountInString(content))
	fmt.Fprintln(deps.Stdout, content)
	return nil
}
