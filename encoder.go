package pix

import (
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Candidate is one fully encoded option produced while selecting a method.
type Candidate struct {
	Method Method
	Data   []byte // payload, without header
}

// Size is the payload length in bytes.
func (c Candidate) Size() int {
	return len(c.Data)
}

type candidateResult struct {
	Candidate
	err error
}

// Encoder runs every configured method over an image and keeps the smallest
// payload. The zero value is not usable; use NewEncoder. An Encoder holds no
// per-call state and is safe for concurrent use.
type Encoder struct {
	// Workers bounds the number of methods encoded concurrently.
	Workers int
	// Methods lists the methods to try. Palette is only tried on images with
	// at most 256 distinct colors.
	Methods []Method
}

// NewEncoder tries every method with one worker per CPU.
func NewEncoder() *Encoder {
	return &Encoder{
		Workers: runtime.NumCPU(),
		Methods: Methods(),
	}
}

// prepare validates b and returns its storage layout and header.
func prepare(b *Buffer) (*Buffer, Header, error) {
	if err := b.Validate(); err != nil {
		return nil, Header{}, err
	}
	packed := b.Packed()
	return packed, Header{
		Width:  packed.Width,
		Height: packed.Height,
		Alpha:  packed.Channels == 4,
	}, nil
}

func frameOf(b *Buffer) frame {
	return frame{width: b.Width, height: b.Height, channels: b.Channels}
}

// runPipeline encodes with a single method. A panicking pipeline is reported
// as an error so one bad candidate cannot take the selection down.
func runPipeline(m Method, src []byte, f frame) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("pix: %s panicked: %v", m, r)
		}
	}()
	return pipelines[m].encode(src, f)
}

// eligible filters e.Methods down to the ones that apply to b.
func (e *Encoder) eligible(b *Buffer) []Method {
	out := make([]Method, 0, len(e.Methods))
	seen := [methodCount]bool{}
	for _, m := range e.Methods {
		if !m.Valid() || seen[m] {
			continue
		}
		seen[m] = true
		if m == MethodPalette {
			if n := countColors(b.Pix, b.Channels, maxPaletteSize); n == 0 || n > maxPaletteSize {
				log.Debugf("palette excluded: %d colors", n)
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// Evaluate encodes b with every eligible method and returns the successful
// candidates sorted by size, ties broken by the lower method id.
func (e *Encoder) Evaluate(b *Buffer) (Header, []Candidate, error) {
	packed, h, err := prepare(b)
	if err != nil {
		return Header{}, nil, err
	}
	methods := e.eligible(packed)
	f := frameOf(packed)

	workers := max(min(e.Workers, len(methods)), 1)
	jobs := make(chan Method)
	results := make(chan candidateResult, len(methods))

	// scatter
	wg := new(sync.WaitGroup)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				data, err := runPipeline(m, packed.Pix, f)
				results <- candidateResult{Candidate: Candidate{Method: m, Data: data}, err: err}
			}
		}()
	}
	for _, m := range methods {
		jobs <- m
	}
	close(jobs)
	wg.Wait()
	close(results)

	// gather
	candidates := make([]Candidate, 0, len(methods))
	var lastErr error
	for r := range results {
		if r.err != nil {
			log.Debugf("%s failed: %+v", r.Method, r.err)
			lastErr = r.err
			continue
		}
		log.Debugf("%s: %d bytes", r.Method, r.Size())
		candidates = append(candidates, r.Candidate)
	}
	if len(candidates) == 0 {
		if lastErr != nil {
			return h, nil, errors.Wrapf(ErrAllCandidatesFailed, "%d methods tried, last error: %v", len(methods), lastErr)
		}
		return h, nil, errors.Wrap(ErrAllCandidatesFailed, "no eligible method")
	}

	// reduce
	sortCandidates(candidates)
	return h, candidates, nil
}

// sortCandidates orders by size, ties broken by the lower method id.
func sortCandidates(c []Candidate) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].Size() != c[j].Size() {
			return c[i].Size() < c[j].Size()
		}
		return c[i].Method < c[j].Method
	})
}

// Encode returns the PIX file holding the smallest candidate.
func (e *Encoder) Encode(b *Buffer) ([]byte, error) {
	h, candidates, err := e.Evaluate(b)
	if err != nil {
		return nil, err
	}
	best := candidates[0]
	h.Method = best.Method
	log.Debugf("selected %s: %d bytes (%dx%d alpha=%v)", best.Method, best.Size(), h.Width, h.Height, h.Alpha)

	out := make([]byte, 0, headerSize+best.Size())
	out = h.Append(out)
	return append(out, best.Data...), nil
}

// EncodeTo encodes b and writes the PIX file to w.
func (e *Encoder) EncodeTo(w io.Writer, b *Buffer) error {
	data, err := e.Encode(b)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Encode encodes b with every method and keeps the smallest result.
func Encode(b *Buffer) ([]byte, error) {
	return NewEncoder().Encode(b)
}

// EncodeMethod encodes b with method m only. Unlike Encode, the method's own
// error is returned, e.g. ErrPaletteOverflow for palette on a photo.
func EncodeMethod(b *Buffer, m Method) ([]byte, error) {
	if !m.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedMethod, "method id %d", m)
	}
	packed, h, err := prepare(b)
	if err != nil {
		return nil, err
	}
	data, err := runPipeline(m, packed.Pix, frameOf(packed))
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", m)
	}
	h.Method = m
	out := make([]byte, 0, headerSize+len(data))
	out = h.Append(out)
	return append(out, data...), nil
}
