//go:build fastembed

package embed

import (
	"context"
	"errors"
	"os"

	fastembed "github.com/anush008/fastembed-go"
)

// Options configures the fastembed runtime.
type Options struct {
	Model     string
	CacheDir  string
	MaxLength int
}

func defaultFastEmbedOptions() *Options {
	opts := &Options{
		Model:     os.Getenv("RELAY_EMBED_MODEL"),
		CacheDir:  os.Getenv("RELAY_FASTEMBED_CACHE"),
		MaxLength: 512,
	}
	return opts
}

// FastEmbedder runs BGE-family models locally through ONNX.
type FastEmbedder struct {
	model *fastembed.FlagEmbedding
}

func NewFastEmbedder(_ context.Context, opt *Options) (Embedder, error) {
	if opt == nil {
		opt = defaultFastEmbedOptions()
	}
	model := fastembed.BGESmallENV15
	if opt.Model != "" {
		model = fastembed.EmbeddingModel(opt.Model)
	}
	init := &fastembed.InitOptions{
		Model:     model,
		MaxLength: opt.MaxLength,
	}
	if opt.CacheDir != "" {
		init.CacheDir = opt.CacheDir
	}
	fe, err := fastembed.NewFlagEmbedding(init)
	if err != nil {
		return nil, err
	}
	return &FastEmbedder{model: fe}, nil
}

func (f *FastEmbedder) Embed(_ context.Context, q string) ([]float32, error) {
	if f == nil || f.model == nil {
		return nil, errors.New("fastembed model not initialised")
	}
	return f.model.QueryEmbed(q)
}

func (f *FastEmbedder) Close() error {
	if f == nil || f.model == nil {
		return nil
	}
	return f.model.Destroy()
}
