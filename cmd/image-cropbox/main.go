package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	imagecropbox "github.com/menta2k/image-cropbox"
	"github.com/menta2k/image-cropbox/internal/config"
	"github.com/menta2k/image-cropbox/internal/utils"
	"github.com/menta2k/image-cropbox/pkg/cropper"
	"github.com/menta2k/image-cropbox/pkg/ollama"
	"github.com/menta2k/image-cropbox/pkg/orientation"
	"github.com/menta2k/image-cropbox/pkg/suggest"
	"github.com/menta2k/image-cropbox/pkg/types"
)

var errUsage = errors.New("usage")

// options are the command line settings. Flags left unset fall back to the
// config file.
type options struct {
	in, outDir, configPath string
	rect, ratio, pan       string
	viewport, size         string
	rotate                 int
	zoom                   float64
	suggest                bool
	model, url             string
	ext                    string
	quality                int
	lossless               bool
	debug                  bool
	verbose                bool
	set                    map[string]bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("image-cropbox", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.in, "in", "", "input image path, directory or URL (jpg/png/webp)")
	fs.StringVar(&o.outDir, "out", "", "output directory")
	fs.StringVar(&o.configPath, "config", config.GetConfigPath(), "config file")

	fs.StringVar(&o.rect, "rect", "", "initial crop rectangle in image pixels: x,y,w,h")
	fs.StringVar(&o.ratio, "ratio", "", "on-screen aspect ratio: W:H, decimal or preset name")
	fs.IntVar(&o.rotate, "rotate", 0, "display rotation in degrees clockwise (multiple of 90)")
	fs.StringVar(&o.viewport, "viewport", "", "viewport size in points: WxH")
	fs.StringVar(&o.pan, "pan", "", "pan the image by a screen delta: dx,dy")
	fs.Float64Var(&o.zoom, "zoom", 1.0, "zoom factor applied around the crop center")
	fs.StringVar(&o.size, "size", "", "resize every crop to WxH pixels")

	fs.BoolVar(&o.suggest, "suggest", false, "ask a vision model for the starting crop")
	fs.StringVar(&o.model, "model", "", "vision model name")
	fs.StringVar(&o.url, "url", "", "Ollama server URL")

	fs.StringVar(&o.ext, "ext", "", "output format for crops: jpg|png|webp")
	fs.IntVar(&o.quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	fs.BoolVar(&o.lossless, "lossless", false, "WebP output lossless mode")

	fs.BoolVar(&o.debug, "debug", false, "write a debug overlay and the model answer next to each crop")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: image-cropbox -in input.jpg|dir|URL [-rect x,y,w,h] [-ratio 16:9] [-rotate 90] [-pan dx,dy] [-zoom 1.5] [-suggest] [-out outdir]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if o.in == "" {
		fs.Usage()
		return nil, errUsage
	}

	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply overrides the config with the flags given on the command line.
func (o *options) apply(cfg *config.Config) error {
	if o.set["out"] {
		cfg.Output.OutputDir = o.outDir
	}
	if o.set["ext"] {
		cfg.Output.DefaultFormat = o.ext
	}
	if o.set["quality"] {
		cfg.Output.Quality = o.quality
	}
	if o.set["lossless"] {
		cfg.Output.Lossless = o.lossless
	}
	if o.set["suggest"] {
		cfg.Suggest.Enabled = o.suggest
	}
	if o.set["model"] {
		cfg.Suggest.Model = o.model
	}
	if o.set["url"] {
		cfg.Suggest.OllamaURL = o.url
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if o.viewport != "" {
		sz, err := types.ParseSize(o.viewport)
		if err != nil {
			return err
		}
		cfg.Viewport.Width, cfg.Viewport.Height = sz.Width, sz.Height
	}
	if o.size != "" {
		sz, err := types.ParseSize(o.size)
		if err != nil {
			return err
		}
		cfg.Cropper.TargetWidth, cfg.Cropper.TargetHeight = int(sz.Width), int(sz.Height)
	}
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := cfg.NewLogger(stderr)
	imagecropbox.SetLogger(logger)
	defer imagecropbox.SetLogger(nil)

	editorOpts := []imagecropbox.Option{
		imagecropbox.WithLayout(cfg.Layout()),
		imagecropbox.WithCropConfig(cropper.CropConfig{
			TargetWidth:    cfg.Cropper.TargetWidth,
			TargetHeight:   cfg.Cropper.TargetHeight,
			AllowUpscaling: cfg.Cropper.AllowUpscaling,
			Filter:         imaging.Lanczos,
		}),
	}
	if cfg.Suggest.Enabled {
		vc, err := ollama.NewClient(cfg.Suggest.OllamaURL)
		if err != nil {
			return fmt.Errorf("failed to create Ollama client: %w", err)
		}
		editorOpts = append(editorOpts, imagecropbox.WithSuggester(suggest.New(vc, cfg.SuggestOptions())))
	}
	editor := imagecropbox.New(editorOpts...)

	inputs := []string{opts.in}
	if !utils.IsURL(opts.in) && utils.DirExists(opts.in) {
		inputs, err = utils.ListImageFiles(opts.in)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", opts.in, err)
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no images found in %s", opts.in)
		}
	}

	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		return err
	}

	failed := 0
	for _, src := range inputs {
		if err := processOne(ctx, editor, cfg, opts, src); err != nil {
			logger.Error("crop failed", "source", src, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(inputs))
	}
	return nil
}

func processOne(ctx context.Context, editor *imagecropbox.Editor, cfg *config.Config, opts *options, src string) error {
	logger := imagecropbox.Logger()

	format, err := utils.OutputFormat(cfg.Output.DefaultFormat, src)
	if err != nil {
		return err
	}

	doc, err := editor.Open(ctx, src)
	if err != nil {
		return err
	}
	s := doc.Session()

	if opts.rotate != 0 {
		o, err := orientation.FromDegrees(opts.rotate)
		if err != nil {
			return err
		}
		if err := s.SetOrientation(o); err != nil {
			return err
		}
	}

	var ratio cropper.AspectRatio
	if opts.ratio != "" {
		ratio, err = cropper.ParseAspectRatio(opts.ratio)
		if err != nil {
			return err
		}
	}

	if cfg.Suggest.Enabled {
		qctx := ctx
		if d := cfg.SuggestTimeout(); d > 0 {
			var cancel context.CancelFunc
			qctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		if _, err := editor.Suggest(qctx, doc, ratio.Ratio()); err != nil {
			return fmt.Errorf("suggestion failed: %w", err)
		}
	}

	if opts.rect != "" {
		r, err := types.ParseRect(opts.rect)
		if err != nil {
			return err
		}
		if err := s.SetCropRect(r); err != nil {
			return err
		}
	}

	if opts.ratio != "" {
		if err := s.SetRatio(ratio.Ratio()); err != nil {
			return err
		}
	}

	if opts.pan != "" {
		d, err := types.ParsePoint(opts.pan)
		if err != nil {
			return err
		}
		if err := s.BeginPan(); err != nil {
			return err
		}
		if err := s.Drag(d); err != nil {
			return err
		}
		if _, err := s.EndDrag(); err != nil {
			return err
		}
	}

	if opts.zoom != 1 {
		if err := s.ZoomBy(opts.zoom); err != nil {
			return err
		}
	}

	result, err := editor.Render(doc)
	if err != nil {
		return err
	}

	out := utils.GenerateOutputFilename(src, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, format)
	if err := editor.Save(result.Image, out, format, cfg.Output.Quality, cfg.Output.Lossless); err != nil {
		return err
	}
	logger.Info("crop written",
		"source", src,
		"output", out,
		"crop", result.Rect,
		"orientation", result.Orientation,
		"ratio", result.AspectRatio,
	)

	if !opts.debug {
		return nil
	}

	dbgPath := utils.GenerateOutputFilename(src, cfg.Output.OutputDir, cfg.Output.Prefix, "_debug", "png")
	if err := editor.Save(editor.DebugOverlay(doc), dbgPath, "png", 100, false); err != nil {
		logger.Warn("debug overlay save failed", "path", dbgPath, "error", err)
	}

	if sg, ok := doc.Subject(); ok {
		js, _ := json.MarshalIndent(sg, "", "  ")
		jsPath := utils.GenerateOutputFilename(src, cfg.Output.OutputDir, cfg.Output.Prefix, "_model_output", "json")
		if err := os.WriteFile(jsPath, js, 0o644); err != nil {
			logger.Warn("model output save failed", "path", jsPath, "error", err)
		} else {
			logger.Debug("wrote model output", "path", jsPath)
		}
	}
	return nil
}
