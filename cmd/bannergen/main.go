// bannergen renders promotional banners from source photographs.
//
// Usage:
//
//	bannergen [flags] <image> [image2]
//	bannergen styles
//	bannergen serve [-addr :8080]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/setanarut/bannergen"
	"github.com/setanarut/bannergen/background"
	"github.com/setanarut/bannergen/compose"
	"github.com/setanarut/bannergen/palette"
	"github.com/setanarut/bannergen/server"
	"github.com/setanarut/bannergen/utils"
	"go.uber.org/zap"
)

type options struct {
	config   string
	shape    string
	style    string
	width    int
	height   int
	font     string
	caption  string
	subtitle string
	output   string
	swatch   string
	seed     uint64
	seeded   bool
	palette  string
	colors   int
	workers  int
	white    int
	black    int
	verbose  bool
}

func main() {
	var err error
	switch {
	case len(os.Args) > 1 && os.Args[1] == "styles":
		for _, s := range background.Styles() {
			fmt.Println(s)
		}
	case len(os.Args) > 1 && os.Args[1] == "serve":
		err = runServe(os.Args[2:])
	case len(os.Args) > 1 && (os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help"):
		printUsage()
	default:
		err = run(os.Args[1:])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func parseFlags(args []string) (*options, []string, error) {
	o := &options{}
	fs := flag.NewFlagSet("bannergen", flag.ContinueOnError)
	fs.StringVar(&o.config, "config", "bannergen.yaml", "YAML file with default values")
	fs.StringVar(&o.shape, "shape", "horizontal", "Banner shape: horizontal, vertical or block")
	fs.StringVar(&o.style, "style", "", "Background style (see 'bannergen styles'); empty uses the shape default")
	fs.IntVar(&o.width, "w", 0, "Canvas width; 0 uses the source width")
	fs.IntVar(&o.height, "h", 0, "Canvas height; 0 uses the source height")
	fs.StringVar(&o.font, "font", "", "TrueType/OpenType font file; empty uses Go Regular")
	fs.StringVar(&o.caption, "caption", "", "Caption text")
	fs.StringVar(&o.subtitle, "subtitle", "", "Subtitle text (medical style)")
	fs.StringVar(&o.output, "o", "banner.png", "Output file (.png or .jpg)")
	fs.StringVar(&o.swatch, "swatch", "", "Also write the extracted palette swatch to this file")
	fs.Uint64Var(&o.seed, "seed", 0, "Random seed for randomized styles")
	fs.StringVar(&o.palette, "palette", "mediancut", "Palette method: mediancut, dominant or kmeans")
	fs.IntVar(&o.colors, "colors", palette.DefaultSize, "Palette size")
	fs.IntVar(&o.workers, "workers", 0, "Secondary color scan workers; 0 picks from the source size")
	fs.IntVar(&o.white, "white", palette.WhiteThreshold, "White family threshold")
	fs.IntVar(&o.black, "black", palette.BlackThreshold, "Black family threshold")
	fs.BoolVar(&o.verbose, "v", false, "Verbose development logging")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	o.seeded = set["seed"]

	cfg, err := loadConfig(o.config)
	if err != nil {
		return nil, nil, err
	}
	cfg.merge(o, set)
	return o, fs.Args(), nil
}

func (o *options) builderOptions() bannergen.Options {
	return bannergen.Options{
		PaletteMethod:  palette.ParseMethod(o.palette),
		PaletteSize:    o.colors,
		Workers:        o.workers,
		WhiteThreshold: o.white,
		BlackThreshold: o.black,
	}
}

func (o *options) request(sources []string) bannergen.Request {
	req := bannergen.Request{
		Sources:  sources,
		Caption:  o.caption,
		Subtitle: o.subtitle,
		Width:    o.width,
		Height:   o.height,
		FontPath: o.font,
		Style:    o.style,
		Shape:    compose.ParseShape(o.shape),
	}
	if o.seeded {
		seed := o.seed
		req.Seed = &seed
	}
	return req
}

func run(args []string) error {
	o, sources, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		printUsage()
		return fmt.Errorf("at least one source image is required")
	}
	log, err := newLogger(o.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b := bannergen.New(bannergen.WithOptions(o.builderOptions()), bannergen.WithLogger(log))
	img, err := b.Build(ctx, o.request(sources))
	if err != nil {
		return err
	}
	if err := b.Save(ctx, img, utils.DiskSink{}, o.output, utils.FormatFromPath(o.output)); err != nil {
		return err
	}

	if o.swatch != "" {
		src, err := utils.ReadImage(sources[0])
		if err != nil {
			return err
		}
		p := palette.ExtractLogged(src, o.colors, palette.ParseMethod(o.palette), log)
		if err := utils.SaveImage(palette.Swatch(p, 64), o.swatch); err != nil {
			return err
		}
		log.Info("palette swatch saved", zap.String("path", o.swatch), zap.Int("colors", len(p)))
	}
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "Listen address (default :8080 or PORT)")
	configPath := fs.String("config", "bannergen.yaml", "YAML file with default values")
	verbose := fs.Bool("v", false, "Verbose development logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = cfg.Addr
	}
	if *addr == "" {
		*addr = ":8080"
		if port := os.Getenv("PORT"); port != "" {
			*addr = ":" + port
		}
	}

	log, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	o := &options{colors: palette.DefaultSize, white: palette.WhiteThreshold, black: palette.BlackThreshold}
	cfg.merge(o, nil)
	return server.New(log, o.builderOptions()).Run(*addr)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `bannergen: promotional banners from photographs

Usage:
  bannergen [flags] <image> [image2]   Render a banner
  bannergen styles                     List background styles
  bannergen serve [-addr :8080]        Start the HTTP render endpoint

Flags:
  -shape string     horizontal, vertical or block (default horizontal)
  -style string     background style; empty uses the shape default
  -w, -h int        canvas size; 0 uses the source size
  -font string      font file; empty uses Go Regular
  -caption string   caption text
  -subtitle string  subtitle text (medical style)
  -o string         output file, .png or .jpg (default banner.png)
  -swatch string    also write the palette swatch
  -seed uint        random seed for randomized styles
  -palette string   mediancut, dominant or kmeans
  -colors int       palette size (default 10)
  -workers int      secondary color scan workers
  -white, -black    color family thresholds (default 200 / 50)
  -config string    YAML defaults (default bannergen.yaml)
  -v                verbose logging
`)
}
