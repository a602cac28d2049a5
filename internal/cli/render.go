package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/cache"
	errs "github.com/matzehuels/studio/pkg/errors"
	"github.com/matzehuels/studio/pkg/render/treeviz"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string // output path, default <file>.<format>
	format   string // "svg" or "dot"
	root     string // subtree root, default first root
	detailed bool   // include props and style sources
	noCache  bool   // bypass the render cache
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the instance tree to SVG or DOT",
		Long: `Render the instance tree of a build file as a Graphviz diagram.

SVG output is cached by the content of the build and the render options, so
rendering an unchanged file again is instant. Use --no-cache to bypass it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
		ValidArgsFunction: completeArgs(nil),
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <file>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot")
	cmd.Flags().StringVar(&opts.root, "root", "", "render only the subtree under this instance")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show props and style sources")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	format := strings.ToLower(opts.format)
	if format != formatSVG && format != formatDOT {
		return errs.New(errs.ErrCodeInvalidInput, "unknown format %q (use svg or dot)", opts.format)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", path)
	}
	b, err := loadBuild(path)
	if err != nil {
		return err
	}

	root := opts.root
	if root == "" {
		root = defaultRoot(b)
	}
	if _, ok := b.Instances[root]; !ok {
		return errs.New(errs.ErrCodeNotFound, "instance %q not found", root)
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
	}

	data, err := c.renderTree(ctx, b, raw, root, format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Rendered %s", root)
	printFile(out)
	if format == formatDOT {
		printNextStep("render it yourself", "dot -Tsvg "+out)
	}
	return nil
}

// renderTree returns DOT directly, or SVG from the cache when the same build
// was rendered with the same options before.
func (c *CLI) renderTree(ctx context.Context, b *build.Build, raw []byte, root, format string, opts renderOpts) ([]byte, error) {
	dot := treeviz.ToDOT(b, root, treeviz.Options{Detailed: opts.detailed})
	if format == formatDOT {
		return []byte(dot), nil
	}

	ch, err := newCache(opts.noCache)
	if err != nil {
		c.Logger.Warn("render cache unavailable", "err", err)
		ch = cache.NewNullCache()
	}
	defer ch.Close()

	key := cache.NewDefaultKeyer().RenderKey(cache.Hash(raw), cache.RenderKeyOpts{Format: format, RootID: root, Labels: opts.detailed})
	if data, hit, err := ch.Get(ctx, key); err == nil && hit {
		c.Logger.Debug("render cache hit", "root", root)
		return data, nil
	}

	spinner := newSpinnerWithContext(ctx, "Rendering tree...")
	spinner.Start()
	prog := newProgress(c.Logger)
	svg, err := treeviz.RenderSVG(ctx, dot)
	spinner.Stop()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render tree")
	}
	prog.done("rendered", "root", root, "bytes", len(svg))

	if err := ch.Set(ctx, key, svg, cache.TTLRender); err != nil {
		c.Logger.Warn("render cache set", "err", err)
	}
	return svg, nil
}
