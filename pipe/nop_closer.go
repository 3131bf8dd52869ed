package pipe

import "io"

// readerNopCloser wraps an io.Reader that the Pipeline must not close
// itself (the pipeline's own stdin, supplied by the caller, or a file the
// caller still owns). commandStage knows how to unwrap it before handing
// it to exec.Cmd, so an *os.File underneath isn't needlessly copied
// through an extra os.Pipe().
type readerNopCloser struct {
	io.Reader
}

func (readerNopCloser) Close() error { return nil }

func newReaderNopCloser(r io.Reader) io.ReadCloser {
	return readerNopCloser{r}
}

// writerNopCloser is the stdout counterpart of readerNopCloser.
type writerNopCloser struct {
	io.Writer
}

func (writerNopCloser) Close() error { return nil }
