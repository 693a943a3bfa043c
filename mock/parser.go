package mock

import "github.com/fwojciec/sitescope"

var _ sitescope.HTMLParser = (*HTMLParser)(nil)

// HTMLParser is a mock implementation of sitescope.HTMLParser.
type HTMLParser struct {
	ParsePageFn func(html []byte, baseURL string) (*sitescope.Page, error)
}

func (p *HTMLParser) ParsePage(html []byte, baseURL string) (*sitescope.Page, error) {
	return p.ParsePageFn(html, baseURL)
}
