package buildscript_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	buildscript "github.com/roboslone/go-buildscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emit feeds chunks through a fresh directive writer over a captured stream,
// closes it, and returns the produced bytes.
func emit(t *testing.T, chunks ...string) string {
	t.Helper()

	buf := &bytes.Buffer{}
	w := buildscript.NewDirectiveWriter(buildscript.NewStream(buf))

	for _, c := range chunks {
		n, err := w.Write([]byte(c))
		require.NoError(t, err)
		require.Equal(t, len(c), n)
	}
	require.NoError(t, w.Close())

	return buf.String()
}

func TestDirectiveWriter(t *testing.T) {
	t.Run("simple message", func(t *testing.T) {
		require.Equal(t, "cargo::warning=simple message\n", emit(t, "simple message\n"))
	})

	t.Run("embedded newlines escaped", func(t *testing.T) {
		require.Equal(t, `cargo::warning=with\nnew\nline`+"\n", emit(t, "with\nnew\nline\n"))
	})

	t.Run("trailing newline in body", func(t *testing.T) {
		// only the very last break of the whole record is real
		require.Equal(t, `cargo::warning=with\nnew\nlineend\n`+"\n", emit(t, "with\nnew\nlineend\n\n"))
	})

	t.Run("leading newline", func(t *testing.T) {
		require.Equal(t, `cargo::warning=\nwith\nnew\nlinestart`, emit(t, "\nwith\nnew\nlinestart"))
	})

	t.Run("double newline", func(t *testing.T) {
		require.Equal(t, `cargo::warning=two\n\nnewlines`, emit(t, "two\n\nnewlines"))
	})

	t.Run("carriage return terminator", func(t *testing.T) {
		require.Equal(t, "cargo::warning=line\r", emit(t, "line\r"))
	})

	t.Run("other bytes untouched", func(t *testing.T) {
		require.Equal(
			t,
			`cargo::warning=other\rspecial`+"\tchar\x00a\tb\"c\\",
			emit(t, "other\rspecial\tchar\x00a\tb\"c\\"),
		)
	})

	t.Run("zero-byte record emits no marker", func(t *testing.T) {
		require.Empty(t, emit(t))
		require.Empty(t, emit(t, ""))
	})
}

func TestChunkInvariance(t *testing.T) {
	messages := []string{
		"with\nnew\nlineend\n",
		"two\n\nnewlines",
		"\r\n\r\n",
		"plain",
		"a\rb\nc\r\n",
	}

	for _, msg := range messages {
		t.Run(fmt.Sprintf("%q", msg), func(t *testing.T) {
			want := emit(t, msg)

			for i := 1; i < len(msg); i++ {
				require.Equal(t, want, emit(t, msg[:i], msg[i:]), "split at %d", i)
			}

			for i := 1; i < len(msg); i++ {
				for j := i; j < len(msg); j++ {
					require.Equal(t, want, emit(t, msg[:i], msg[i:j], msg[j:]), "split at %d/%d", i, j)
				}
			}

			chunks := make([]string, 0, len(msg))
			for i := 0; i < len(msg); i++ {
				chunks = append(chunks, msg[i:i+1])
			}
			require.Equal(t, want, emit(t, chunks...), "byte at a time")
		})
	}
}

func TestMarkerOnce(t *testing.T) {
	out := emit(t, "first ", "second ", "third\n")
	require.Equal(t, 1, strings.Count(out, buildscript.Marker))
	require.True(t, strings.HasPrefix(out, buildscript.Marker))
}

func TestNoFalseSplits(t *testing.T) {
	out := emit(t, "a\nb\nc\nd\n")

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], buildscript.Marker))
}

func TestWriteRecord(t *testing.T) {
	record := func(t *testing.T, fn func(w *buildscript.DirectiveWriter)) string {
		t.Helper()

		buf := &bytes.Buffer{}
		w := buildscript.NewDirectiveWriter(buildscript.NewStream(buf))
		fn(w)
		require.NoError(t, w.Close())

		return buf.String()
	}

	t.Run("complete record", func(t *testing.T) {
		out := record(t, func(w *buildscript.DirectiveWriter) {
			n, err := w.WriteRecord([]byte("alpha\nomega\n"))
			require.NoError(t, err)
			require.Equal(t, 12, n)
		})
		require.Equal(t, `cargo::warning=alpha\nomega`+"\n", out)
	})

	t.Run("zero-byte record", func(t *testing.T) {
		out := record(t, func(w *buildscript.DirectiveWriter) {
			_, err := w.WriteRecord(nil)
			require.NoError(t, err)
		})
		require.Empty(t, out)
	})

	t.Run("after chunked writes", func(t *testing.T) {
		out := record(t, func(w *buildscript.DirectiveWriter) {
			_, err := w.Write([]byte("part\n"))
			require.NoError(t, err)
			_, err = w.WriteRecord([]byte("end\n"))
			require.NoError(t, err)
		})
		require.Equal(t, `cargo::warning=part\nend`+"\n", out)
	})

	t.Run("empty final call resolves the terminator", func(t *testing.T) {
		out := record(t, func(w *buildscript.DirectiveWriter) {
			_, err := w.Write([]byte("tail\n"))
			require.NoError(t, err)
			_, err = w.WriteRecord(nil)
			require.NoError(t, err)
		})
		require.Equal(t, "cargo::warning=tail\n", out)
	})
}

var errBoom = errors.New("boom")

type flakyWriter struct {
	writes int
	failAt int
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes >= w.failAt {
		return 0, errBoom
	}
	return len(p), nil
}

func TestWriteErrors(t *testing.T) {
	t.Run("write failure surfaces", func(t *testing.T) {
		w := buildscript.NewDirectiveWriter(buildscript.NewStream(&flakyWriter{failAt: 1}))

		_, err := w.Write([]byte("x"))
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("close failure is swallowed", func(t *testing.T) {
		// marker and body succeed, flushing the withheld terminator fails
		w := buildscript.NewDirectiveWriter(buildscript.NewStream(&flakyWriter{failAt: 3}))

		_, err := w.Write([]byte("x\n"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	})
}

func TestPlainWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := buildscript.NewPlainWriter(buildscript.NewStream(buf))

	n, err := w.Write([]byte("raw\nbytes\x00\r\n"))
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.NoError(t, w.Close())

	require.Equal(t, "raw\nbytes\x00\r\n", buf.String())
}

func TestConcurrentRecords(t *testing.T) {
	buf := &bytes.Buffer{}
	stream := buildscript.NewStream(buf)

	const goroutines = 8
	const records = 50

	wg := sync.WaitGroup{}
	for g := 0; g < goroutines; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := 0; i < records; i++ {
				w := buildscript.NewDirectiveWriter(stream)
				_, err := w.WriteRecord(fmt.Appendf(nil, "worker %d:\nrecord %d\n", g, i))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, goroutines*records)
	for _, line := range lines {
		require.Regexp(t, `^cargo::warning=worker \d+:\\nrecord \d+$`, line)
	}
}
