package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Standard glamour styles offered in the config menu.
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleASCII      = "ascii"
	StyleNoTTY      = "notty"
)

// ThemeNames returns the standard markdown style names.
func ThemeNames() []string {
	return []string{StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StylePink, StyleASCII, StyleNoTTY}
}

// IsStandardStyle reports whether style is one of glamour's built-in styles.
func IsStandardStyle(style string) bool {
	for _, name := range ThemeNames() {
		if name == style {
			return true
		}
	}
	return false
}

// Markdown renders markdown content for terminal display.
// Uses a pooled renderer for better performance and thread safety.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// rendererPool keeps one sync.Pool per option set. glamour.TermRenderer is
// not safe for concurrent Render calls, so renderers are never shared.
type rendererPool struct {
	mu    sync.RWMutex
	pools map[string]*sync.Pool
}

var globalPool = &rendererPool{
	pools: make(map[string]*sync.Pool),
}

func cacheKey(opts Options) string {
	return fmt.Sprintf("%s:%d:%t:%t:%t:%t",
		opts.Style,
		opts.Width,
		opts.EnableEmoji,
		opts.PreserveNewLines,
		opts.TableWrap,
		opts.InlineTableLinks,
	)
}

func (p *rendererPool) getPool(opts Options) *sync.Pool {
	key := cacheKey(opts)

	p.mu.RLock()
	if pool, ok := p.pools[key]; ok {
		p.mu.RUnlock()
		return pool
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[key]; ok {
		return pool
	}

	pool := &sync.Pool{
		New: func() interface{} {
			renderer, err := createRenderer(opts)
			if err != nil {
				return nil
			}
			return renderer
		},
	}
	p.pools[key] = pool
	return pool
}

func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	renderer := p.getPool(opts).Get()
	if renderer == nil {
		// Pool's New failed; surface the real error.
		return createRenderer(opts)
	}
	return renderer.(*glamour.TermRenderer), nil
}

func (p *rendererPool) put(opts Options, renderer *glamour.TermRenderer) {
	if renderer == nil {
		return
	}
	p.getPool(opts).Put(renderer)
}

// createRenderer creates a new TermRenderer with the specified options.
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	var styleOpt glamour.TermRendererOption
	if opts.Style == "" || IsStandardStyle(opts.Style) {
		style := opts.Style
		if style == "" {
			style = StyleDark
		}
		styleOpt = glamour.WithStandardStyle(style)
	} else {
		styleOpt = glamour.WithStylePath(opts.Style)
	}

	rendererOpts := []glamour.TermRendererOption{
		styleOpt,
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}

	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}

	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(rendererOpts...)
}
