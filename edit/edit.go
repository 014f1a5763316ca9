// Package edit hands a PIX image to an external editor as PNG and stores the
// edited result back into the PIX file.
package edit

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/svanichkin/pix"
	"github.com/svanichkin/pix/raster"
)

var log = logging.MustGetLogger("edit")

// FastSaveMethods are tried when a Session saves in fast mode.
var FastSaveMethods = []pix.Method{pix.MethodRaw, pix.MethodZlib, pix.MethodRowFilter}

// Launcher opens path in an editor. The returned channel receives exactly one
// value once the editor has finished with the file.
type Launcher interface {
	Launch(ctx context.Context, path string) (<-chan error, error)
}

// SystemLauncher starts the platform's default image editor and waits for
// the process to exit.
type SystemLauncher struct{}

func (SystemLauncher) command(ctx context.Context, path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.CommandContext(ctx, "mspaint", path)
	case "darwin":
		return exec.CommandContext(ctx, "open", "-W", path)
	}
	return exec.CommandContext(ctx, "xdg-open", path)
}

func (l SystemLauncher) Launch(ctx context.Context, path string) (<-chan error, error) {
	cmd := l.command(ctx, path)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start %s", cmd.Path)
	}
	log.Debugf("launched %s for %s (pid %d)", cmd.Path, path, cmd.Process.Pid)

	done := make(chan error, 1)
	go func() {
		done <- errors.WithStack(cmd.Wait())
	}()
	return done, nil
}

// Session drives one edit round trip.
type Session struct {
	Launcher Launcher
	// Fast selects the fast decoder and the FastSaveMethods subset on save.
	Fast bool
	// TempDir holds the intermediate PNG; empty means os.TempDir().
	TempDir string
	// Manual, when set, is read for a confirmation line after the launcher
	// fails, while the user edits the PNG by hand.
	Manual io.Reader
}

// NewSession edits with the system editor.
func NewSession() *Session {
	return &Session{Launcher: SystemLauncher{}}
}

// Run decodes pixPath, waits for the editor, and writes the edited pixels
// back to pixPath.
func (s *Session) Run(ctx context.Context, pixPath string) error {
	data, err := os.ReadFile(pixPath)
	if err != nil {
		return errors.WithStack(err)
	}
	var img *pix.Buffer
	if s.Fast {
		img, err = pix.DecodePreferFast(data)
	} else {
		img, err = pix.Decode(data)
	}
	if err != nil {
		return errors.Wrapf(err, "%s", pixPath)
	}

	artifact, err := s.writeArtifact(pixPath, img)
	if err != nil {
		return err
	}
	defer os.Remove(artifact)

	done, err := s.Launcher.Launch(ctx, artifact)
	if err != nil {
		if s.Manual == nil {
			return err
		}
		log.Warningf("%v: edit %s manually, then press Enter", err, artifact)
		done = s.waitManual()
	}
	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "editor")
		}
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}

	edited, _, err := raster.ReadFile(artifact)
	if err != nil {
		return err
	}
	out, err := s.encode(edited)
	if err != nil {
		return err
	}
	if err := os.WriteFile(pixPath, out, 0o644); err != nil {
		return errors.WithStack(err)
	}
	h, _ := pix.DecodeHeader(out)
	log.Infof("saved %s: %dx%d %s %d bytes", pixPath, h.Width, h.Height, h.Method, len(out))
	return nil
}

func (s *Session) waitManual() <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(s.Manual).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- errors.WithStack(err)
	}()
	return done
}

func (s *Session) writeArtifact(pixPath string, img *pix.Buffer) (string, error) {
	base := strings.TrimSuffix(filepath.Base(pixPath), filepath.Ext(pixPath))
	f, err := os.CreateTemp(s.TempDir, base+"-*.png")
	if err != nil {
		return "", errors.WithStack(err)
	}
	if err := raster.Encode(f, img, "png"); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.WithStack(err)
	}
	return f.Name(), nil
}

// encode picks the smallest of FastSaveMethods in fast mode and falls back
// to a full selection when none of them succeeds.
func (s *Session) encode(img *pix.Buffer) ([]byte, error) {
	if s.Fast {
		enc := pix.NewEncoder()
		enc.Methods = FastSaveMethods
		out, err := enc.Encode(img)
		if err == nil {
			return out, nil
		}
		log.Warningf("fast save failed, trying every method: %v", err)
	}
	return pix.Encode(img)
}
