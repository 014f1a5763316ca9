// Command pix converts images to and from the PIX lossless container.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/svanichkin/pix"
	"github.com/svanichkin/pix/edit"
	"github.com/svanichkin/pix/raster"
)

var log = logging.MustGetLogger("pix-cli")

const usage = `usage:
  pix encode [-method NAME] [-list] [-fast] IN...
  pix decode IN.pix [OUT]
  pix info FILE.pix...
  pix view FILE.pix...
  pix edit [-fast] FILE.pix
`

func configureLogging() {
	switch strings.ToUpper(os.Getenv("PIX_LOGLEVEL")) {
	case "DEBUG":
		logging.SetLevel(logging.DEBUG, "")
	case "WARNING":
		logging.SetLevel(logging.WARNING, "")
	default:
		logging.SetLevel(logging.INFO, "")
	}
	logging.SetFormatter(logging.MustStringFormatter("%{level:.1s}%{time:0102 15:04:05.999999} %{pid} %{shortfile}] %{message}"))
}

func main() {
	configureLogging()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "encode":
		err = runEncode(args)
	case "decode":
		err = runDecode(args)
	case "info":
		err = runInfo(args)
	case "view":
		err = runView(ctx, args)
	case "edit":
		err = runEdit(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", os.Args[1], err)
		log.Debugf("%+v", err)
		os.Exit(1)
	}
}

func outputPath(in, ext string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ext
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	method := fs.String("method", "", "force a single method (name or id)")
	list := fs.Bool("list", false, "print every candidate size")
	fast := fs.Bool("fast", false, "only try raw, zlib and png-row")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no input files")
	}

	enc := pix.NewEncoder()
	if *fast {
		enc.Methods = edit.FastSaveMethods
	}
	var forced *pix.Method
	if *method != "" {
		m, err := pix.ParseMethod(*method)
		if err != nil {
			return err
		}
		forced = &m
	}

	var bar *pb.ProgressBar
	if fs.NArg() > 1 {
		bar = pb.StartNew(fs.NArg())
		defer bar.FinishPrint("")
	}
	for _, in := range fs.Args() {
		if err := encodeFile(enc, forced, in, *list); err != nil {
			return err
		}
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

// encodeFile writes in as a .pix next to it. A forced method bypasses the
// selection so its own error is reported.
func encodeFile(enc *pix.Encoder, forced *pix.Method, in string, list bool) error {
	img, _, err := raster.ReadFile(in)
	if err != nil {
		return err
	}
	var out []byte
	if forced != nil {
		if out, err = pix.EncodeMethod(img, *forced); err != nil {
			return errors.Wrapf(err, "%s", in)
		}
	} else {
		h, candidates, err := enc.Evaluate(img)
		if err != nil {
			return errors.Wrapf(err, "%s", in)
		}
		if list {
			for _, c := range candidates {
				fmt.Printf("  %-13s %10d bytes\n", c.Method, c.Size())
			}
		}
		best := candidates[0]
		h.Method = best.Method
		out = append(h.Append(nil), best.Data...)
	}
	h, err := pix.DecodeHeader(out)
	if err != nil {
		return err
	}

	outPath := outputPath(in, ".pix")
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return errors.WithStack(err)
	}
	rawSize := h.PixelCount() * h.Channels()
	ratio := 0.0
	if rawSize > 0 {
		ratio = float64(len(out)) / float64(rawSize)
	}
	fmt.Printf("Encoded %s → %s (method=%s alpha=%t size=%d ratio=%.3f)\n", in, outPath, h.Method, h.Alpha, len(out), ratio)
	return nil
}

func runDecode(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("decode needs IN.pix [OUT]")
	}
	in := args[0]
	out := outputPath(in, ".png")
	if len(args) == 2 {
		out = args[1]
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return errors.WithStack(err)
	}
	img, err := pix.Decode(data)
	if err != nil {
		return errors.Wrapf(err, "%s", in)
	}
	if err := raster.WriteFile(out, img); err != nil {
		return err
	}
	fmt.Printf("Decoded %s → %s\n", in, out)
	return nil
}

func runInfo(args []string) error {
	if len(args) == 0 {
		return errors.New("no input files")
	}
	for _, in := range args {
		data, err := os.ReadFile(in)
		if err != nil {
			return errors.WithStack(err)
		}
		h, err := pix.DecodeHeader(data)
		if err != nil {
			return errors.Wrapf(err, "%s", in)
		}
		start := time.Now()
		if _, err := pix.DecodePreferFast(data); err != nil {
			return errors.Wrapf(err, "%s", in)
		}
		fmt.Printf("%s: %dx%d method=%s alpha=%t size=%d load=%v\n",
			in, h.Width, h.Height, h.Method, h.Alpha, len(data), time.Since(start))
	}
	return nil
}

// runView writes each image as a temporary PNG and waits for the system
// viewer to close it.
func runView(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files")
	}
	launcher := edit.SystemLauncher{}
	for _, in := range args {
		data, err := os.ReadFile(in)
		if err != nil {
			return errors.WithStack(err)
		}
		img, err := pix.DecodePreferFast(data)
		if err != nil {
			return errors.Wrapf(err, "%s", in)
		}
		if err := viewOne(ctx, launcher, in, img); err != nil {
			return err
		}
	}
	return nil
}

func viewOne(ctx context.Context, l edit.Launcher, in string, img *pix.Buffer) error {
	f, err := os.CreateTemp("", strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))+"-*.png")
	if err != nil {
		return errors.WithStack(err)
	}
	defer os.Remove(f.Name())
	if err := raster.Encode(f, img, "png"); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WithStack(err)
	}

	done, err := l.Launch(ctx, f.Name())
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func runEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	fast := fs.Bool("fast", false, "fast decode and fast save")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("edit needs exactly one FILE.pix")
	}
	s := edit.NewSession()
	s.Fast = *fast
	s.Manual = os.Stdin
	return s.Run(ctx, fs.Arg(0))
}
