package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ipmark/ipmark"
	"github.com/ipmark/ipmark/diskcache"
	"github.com/ipmark/ipmark/mmdb"
)

type options struct {
	onlyMatching bool
	colorMode    string
	template     string
	tagLines     bool
	tagFiles     bool

	all         bool
	noPrivate   bool
	noLoopback  bool
	noBroadcast bool

	onlyRoutable bool
	provider     string
	includeDir   string

	listProviders bool
	listTemplates bool

	configPath    string
	cacheSnapshot bool
}

type runner struct {
	opts   options
	stdout io.Writer
	stderr io.Writer
}

func (r *runner) run(args []string) error {
	registry := mmdb.NewRegistry()
	if err := registry.SetActive(r.opts.provider); err != nil {
		return err
	}

	if r.opts.listProviders {
		return registry.Describe(r.stdout)
	}
	if r.opts.listTemplates {
		return r.listTemplates(registry)
	}
	if r.opts.tagLines && r.opts.tagFiles {
		return fmt.Errorf("--tag and --tag-files are mutually exclusive")
	}

	extractor, err := ipmark.New(r.opts.extractorOptions()...)
	if err != nil {
		return err
	}

	// Tag output carries positions, not decorations, so the tag modes need
	// no databases at all.
	var pipe *pipeline
	if !r.opts.tagLines && !r.opts.tagFiles {
		pipe, err = r.newPipeline(registry)
		if err != nil {
			return err
		}
		defer pipe.close()
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	out := bufio.NewWriterSize(r.stdout, 64*1024)
	for _, path := range inputs {
		if err := r.processInput(path, out, extractor, pipe); err != nil {
			return err
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}

	if pipe != nil {
		return pipe.saveSnapshot()
	}
	return nil
}

func (r *runner) processInput(path string, out *bufio.Writer, extractor *ipmark.Extractor, pipe *pipeline) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	if r.opts.tagFiles {
		return r.processFile(in, out, extractor)
	}
	return r.processLines(in, out, extractor, pipe)
}

// processLines streams input line by line, rewriting or reporting matches
// per the selected output mode.
func (r *runner) processLines(in io.Reader, out *bufio.Writer, extractor *ipmark.Extractor, pipe *pipeline) error {
	ctx := context.Background()
	br := bufio.NewReaderSize(in, 64*1024)

	var matches []ipmark.Match
	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			if err := r.processLine(ctx, line, out, extractor, pipe, &matches); err != nil {
				return err
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}

func (r *runner) processLine(ctx context.Context, line []byte, out *bufio.Writer, extractor *ipmark.Extractor, pipe *pipeline, matches *[]ipmark.Match) error {
	body := line
	terminated := body[len(body)-1] == '\n'
	if terminated {
		body = body[:len(body)-1]
	}

	*matches = extractor.AppendMatches((*matches)[:0], body)

	switch {
	case r.opts.tagLines:
		if len(*matches) == 0 {
			return nil
		}
		return tagMatches(body, *matches).WriteJSON(out)

	case r.opts.onlyMatching:
		for _, m := range *matches {
			decoration := pipe.decorator.Decorate(ctx, m.Addr, body[m.Start:m.End])
			if _, err := out.WriteString(decoration); err != nil {
				return err
			}
			if err := out.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil

	default:
		if len(*matches) == 0 {
			_, err := out.Write(line)
			return err
		}
		tagged := ipmark.NewTagged(body)
		for _, m := range *matches {
			raw := body[m.Start:m.End]
			tagged.Tag(ipmark.Tag{
				Value:      string(raw),
				Start:      m.Start,
				End:        m.End,
				Decoration: pipe.decorator.Decorate(ctx, m.Addr, raw),
			})
		}
		if err := tagged.WriteInline(out); err != nil {
			return err
		}
		if terminated {
			return out.WriteByte('\n')
		}
		return nil
	}
}

// processFile reads the whole input and emits one JSON record when it
// contains any matches. Files without matches produce no output.
func (r *runner) processFile(in io.Reader, out *bufio.Writer, extractor *ipmark.Extractor) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	matches := extractor.AppendMatches(nil, data)
	if len(matches) == 0 {
		return nil
	}
	return tagMatches(data, matches).WriteJSON(out)
}

func tagMatches(text []byte, matches []ipmark.Match) *ipmark.Tagged {
	tagged := ipmark.NewTagged(text)
	for _, m := range matches {
		tagged.Tag(ipmark.Tag{
			Value: string(text[m.Start:m.End]),
			Start: m.Start,
			End:   m.End,
		})
	}
	return tagged
}

func (o *options) extractorOptions() []ipmark.Option {
	opts := []ipmark.Option{ipmark.PresetAllAddresses()}
	if o.all {
		return opts
	}
	if o.noPrivate {
		opts = append(opts, ipmark.PrivateIPs(false))
	}
	if o.noLoopback {
		opts = append(opts, ipmark.LoopbackIPs(false))
	}
	if o.noBroadcast {
		opts = append(opts, ipmark.LinkLocalIPs(false))
	}
	return opts
}

// pipeline bundles everything the decorating modes need: the compiled
// template, an opened provider, the in-run cache, and the optional
// disk-backed snapshot of that cache.
type pipeline struct {
	decorator *ipmark.Decorator
	cache     *ipmark.Cache
	provider  mmdb.Provider

	store *diskcache.Store
	key   string
}

func (r *runner) newPipeline(registry *mmdb.Registry) (*pipeline, error) {
	dir := r.opts.includeDir
	if dir == "" {
		if envDir, ok := mmdb.EnvDir(); ok {
			dir = envDir
			if os.Getenv("IPMARK_MMDB_DIR") == "" {
				fmt.Fprintln(r.stderr, "ipmark: GEOIP_MMDB_DIR is deprecated, use IPMARK_MMDB_DIR")
			}
		}
	}

	src := r.opts.template
	if colorEnabled(r.opts.colorMode, r.stdout) {
		src = colorizeTemplate(src)
	}
	tmpl, err := ipmark.CompileTemplate(src)
	if err != nil {
		return nil, err
	}

	provider, err := registry.OpenActive(dir)
	if err != nil {
		return nil, err
	}

	cache := ipmark.NewCache()

	logger := slog.New(slog.NewTextHandler(r.stderr, nil))
	decoratorOpts := []ipmark.DecoratorOption{
		ipmark.WithDecoratorLogger(logger),
	}
	if r.opts.onlyRoutable {
		decoratorOpts = append(decoratorOpts, ipmark.RoutableOnly(provider.Routable))
	}

	p := &pipeline{
		decorator: ipmark.NewDecorator(tmpl, provider, cache, decoratorOpts...),
		cache:     cache,
		provider:  provider,
	}

	if r.opts.cacheSnapshot {
		store, err := diskcache.Open("ipmark")
		if err != nil {
			return nil, fmt.Errorf("opening cache snapshot store: %w", err)
		}
		p.store = store
		p.key = diskcache.Fingerprint(src, r.opts.provider, dir)
		if entries, ok, err := store.Load(p.key); err != nil {
			fmt.Fprintf(r.stderr, "ipmark: discarding unreadable cache snapshot: %v\n", err)
		} else if ok {
			cache.Restore(entries)
		}
	}

	return p, nil
}

func (p *pipeline) saveSnapshot() error {
	if p.store == nil {
		return nil
	}
	return p.store.Save(p.key, p.cache.Snapshot())
}

func (p *pipeline) close() {
	p.provider.Close()
}

func (r *runner) listTemplates(registry *mmdb.Registry) error {
	p, err := registry.Active()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.stdout, "Default template:\n  %s\n\n", defaultTemplate)
	fmt.Fprintf(r.stdout, "Fields resolved by %s:\n", p.Name())
	for _, f := range p.Fields() {
		fmt.Fprintf(r.stdout, "  %-15s %s (e.g. %s)\n", "{"+f.Name+"}", f.Description, f.Example)
	}
	return nil
}
