package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
)

func recorder(name string, log *[]string, err error) Stage {
	return NewStage(name, func(_ context.Context, _ *fileset.FileSet, _ *metadata.Context) error {
		*log = append(*log, name)
		return err
	})
}

func TestRunSequential(t *testing.T) {
	var ran []string
	p := New(recorder("a", &ran, nil)).Use(recorder("b", &ran, nil), recorder("c", &ran, nil))

	res, err := p.Run(context.Background(), fileset.New(), metadata.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Equal(t, []string{"a", "b", "c"}, p.Names())
	require.Len(t, res.Stages, 3)
	for _, rec := range res.Stages {
		assert.NoError(t, rec.Err)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	p := New(
		recorder("ask", &ran, nil),
		recorder("filter", &ran, boom),
		recorder("render", &ran, nil),
	)

	res, err := p.Run(context.Background(), fileset.New(), metadata.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "filter", se.Stage)
	assert.Equal(t, 1, se.Index)
	assert.Contains(t, err.Error(), "stage 2 (filter)")

	assert.Equal(t, []string{"ask", "filter"}, ran)
	require.Len(t, res.Stages, 2)
	assert.ErrorIs(t, res.Stages[1].Err, boom)
}

func TestRunMutationsVisibleToLaterStages(t *testing.T) {
	p := New(
		NewStage("write", func(_ context.Context, files *fileset.FileSet, meta *metadata.Context) error {
			files.Put("a.txt", &fileset.File{Contents: []byte("a")})
			return meta.Set("seen", true)
		}),
		NewStage("read", func(_ context.Context, files *fileset.FileSet, meta *metadata.Context) error {
			if _, ok := files.Get("a.txt"); !ok {
				return errors.New("file missing")
			}
			v, _, err := meta.Lookup("seen")
			if err != nil {
				return err
			}
			if v != true {
				return errors.New("metadata missing")
			}
			return nil
		}),
	)

	_, err := p.Run(context.Background(), fileset.New(), metadata.New())
	assert.NoError(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string
	p := New(
		NewStage("first", func(context.Context, *fileset.FileSet, *metadata.Context) error {
			ran = append(ran, "first")
			cancel()
			return nil
		}),
		recorder("second", &ran, nil),
	)

	_, err := p.Run(ctx, fileset.New(), metadata.New())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"first"}, ran)
}
