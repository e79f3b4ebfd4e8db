package checkers

import (
	"context"
	"errors"

	"github.com/inboxinfotech/chatbot/pkg/content"
)

// ContentChecker reports not-ready until the company content blob has been
// loaded at least once. The chatbot answers nothing useful without it.
type ContentChecker struct {
	provider *content.Provider
}

func NewContentChecker(provider *content.Provider) *ContentChecker {
	return &ContentChecker{provider: provider}
}

func (c *ContentChecker) Name() string { return "content" }

func (c *ContentChecker) Check(_ context.Context) error {
	if b := c.provider.Current(); b == nil || b.Text == "" {
		return errors.New("company content not loaded")
	}
	return nil
}
