package generator

import (
	"fmt"

	"github.com/edgecomet/seometa/internal/common/configtypes"
	"github.com/edgecomet/seometa/internal/seo/keywords"
)

// FromConfig builds a Generator from the engine and site sections of the
// service configuration. A stopwords file replaces the built-in list;
// extra stopwords are added on top of whichever list is active.
func FromConfig(cfg *configtypes.SEOConfig) (*Generator, error) {
	stopwords, err := loadStopwords(cfg.Engine)
	if err != nil {
		return nil, err
	}

	return New(Options{
		Stopwords:       stopwords,
		MaxKeywords:     cfg.Engine.MaxKeywords,
		PreviewKeywords: cfg.Engine.PreviewKeywords,
		Site: Site{
			BaseURL:       cfg.Site.BaseURL,
			Name:          cfg.Site.Name,
			TwitterHandle: cfg.Site.TwitterHandle,
			DefaultImage:  cfg.Site.DefaultImage,
		},
	}), nil
}

func loadStopwords(cfg configtypes.EngineConfig) (keywords.Stopwords, error) {
	var base keywords.Stopwords
	if cfg.StopwordsFile != "" {
		words, err := keywords.LoadStopwords(cfg.StopwordsFile, cfg.Language)
		if err != nil {
			return keywords.Stopwords{}, err
		}
		base = keywords.NewStopwords(words...)
	} else {
		defaults, err := keywords.DefaultStopwords(cfg.Language)
		if err != nil {
			return keywords.Stopwords{}, err
		}
		base = defaults
	}

	stopwords := base.With(cfg.ExtraStopwords...)
	if stopwords.Len() == 0 {
		return keywords.Stopwords{}, fmt.Errorf("stopword list for language %q is empty", cfg.Language)
	}
	return stopwords, nil
}
