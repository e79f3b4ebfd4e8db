// Package content owns the company content blob used to ground every AI
// prompt and the deterministic extraction fallback. The blob is produced
// out-of-band by the scraper; this package only reloads its output file.
package content

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"sync/atomic"
	"time"
)

// Block is one immutable snapshot of the scraped company content.
type Block struct {
	Text      string
	Hash      string
	LoadedAt  time.Time
	SizeBytes int
}

// Provider hands out the current content block. The block is replaced
// wholesale by an atomic pointer swap; readers never observe a partial
// update.
type Provider struct {
	current atomic.Pointer[Block]
}

func NewProvider(initial string) *Provider {
	p := &Provider{}
	p.swap(initial)
	return p
}

// Current returns the latest content block. Never nil.
func (p *Provider) Current() *Block {
	return p.current.Load()
}

// Replace installs new content if it differs from the current block.
// Reports whether a swap happened.
func (p *Provider) Replace(text string) bool {
	if hashOf(text) == p.current.Load().Hash {
		return false
	}
	p.swap(text)
	return true
}

func (p *Provider) swap(text string) {
	p.current.Store(&Block{
		Text:      text,
		Hash:      hashOf(text),
		LoadedAt:  time.Now().UTC(),
		SizeBytes: len(text),
	})
}

func hashOf(text string) string {
	if text == "" {
		return ""
	}
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// FromFile builds a provider initialized from the scraper's cache file.
// A missing file leaves the block empty; the refresher will pick content
// up on its next cycle.
func FromFile(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewProvider(""), nil
		}
		return nil, err
	}
	return NewProvider(string(data)), nil
}
