package transfer

import "io"

// ProgressFunc receives the bytes sent so far in the current attempt and
// the total size of the file. Every attempt starts with a (0, total) call.
type ProgressFunc func(sent, total int64)

// progressReader wraps the file reader, caps every read at chunk bytes and
// reports the running count after each one.
type progressReader struct {
	r          io.Reader
	chunk      int
	sent       int64
	total      int64
	onProgress ProgressFunc
	onRead     func()
}

func (p *progressReader) Read(b []byte) (int, error) {
	if p.chunk > 0 && len(b) > p.chunk {
		b = b[:p.chunk]
	}

	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onRead != nil {
			p.onRead()
		}
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}
