// Package index manages the lifecycle of the job search index: creation,
// analysis and mapping updates, alias swaps, deletion and bulk loading.
package index

import (
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/indices/create"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/tokenchar"
)

// Analyzer names defined by the index settings.
const (
	AnalyzerNgram     = "my_analyzer"
	AnalyzerIKSmart   = "ik_syno_smart"
	AnalyzerIKMax     = "ik_syno_max"
	tokenizerNgram    = "my_tokenizer"
	filterStopwords   = "my_stopword"
	filterSynonyms    = "my_synonym"
	defaultAlias      = "openjob"
	defaultStopwords  = "analysis/stopwords.txt"
	defaultSynonyms   = "analysis/synonym.txt"
	defaultNgramMin   = 2
	defaultNgramMax   = 3
	defaultShardCount = 1
)

// Config is a versioned description of the job index. Bumping Version
// names a new physical index; the alias stays stable for searches.
type Config struct {
	Alias    string `mapstructure:"alias"`
	Version  int    `mapstructure:"version"`
	Shards   int    `mapstructure:"shards"`
	Replicas int    `mapstructure:"replicas"`
	NgramMin int    `mapstructure:"ngram_min"`
	NgramMax int    `mapstructure:"ngram_max"`
	// IKPlugin enables the ik_smart/ik_max_word based analyzers. Without the
	// plugin companyName2 is analyzed with the ngram analyzer.
	IKPlugin bool `mapstructure:"ik_plugin"`
	// Paths are relative to the node's config directory. An empty path
	// drops the filter.
	StopwordsPath string `mapstructure:"stopwords_path"`
	SynonymsPath  string `mapstructure:"synonyms_path"`
}

// DefaultConfig returns the configuration of the job index.
func DefaultConfig() Config {
	return Config{
		Alias:         defaultAlias,
		Version:       1,
		Shards:        defaultShardCount,
		Replicas:      0,
		NgramMin:      defaultNgramMin,
		NgramMax:      defaultNgramMax,
		IKPlugin:      true,
		StopwordsPath: defaultStopwords,
		SynonymsPath:  defaultSynonyms,
	}
}

// PhysicalName is the name of the index created for this version.
func (c Config) PhysicalName() string {
	return fmt.Sprintf("%s_v%d", c.Alias, c.Version)
}

// RebuildName is the name of a physical index built at t. Millisecond
// resolution keeps back-to-back rebuilds from colliding.
func (c Config) RebuildName(t time.Time) string {
	return fmt.Sprintf("%s_v%d_%d", c.Alias, c.Version, t.UnixMilli())
}

func (c Config) filters() []string {
	var filters []string
	if c.StopwordsPath != "" {
		filters = append(filters, filterStopwords)
	}
	if c.SynonymsPath != "" {
		filters = append(filters, filterSynonyms)
	}
	return filters
}

// Analysis returns the analysis settings block.
func (c Config) Analysis() *types.IndexSettingsAnalysis {
	filters := c.filters()

	analysis := &types.IndexSettingsAnalysis{
		Tokenizer: map[string]types.Tokenizer{
			tokenizerNgram: types.NGramTokenizer{
				MinGram:    intPtr(c.NgramMin),
				MaxGram:    intPtr(c.NgramMax),
				TokenChars: []tokenchar.TokenChar{tokenchar.Letter, tokenchar.Digit},
			},
		},
		Analyzer: map[string]types.Analyzer{
			AnalyzerNgram: types.CustomAnalyzer{Tokenizer: tokenizerNgram, Filter: filters},
		},
	}
	if c.IKPlugin {
		analysis.Analyzer[AnalyzerIKSmart] = types.CustomAnalyzer{Tokenizer: "ik_smart", Filter: filters}
		analysis.Analyzer[AnalyzerIKMax] = types.CustomAnalyzer{Tokenizer: "ik_max_word", Filter: filters}
	}

	if c.StopwordsPath != "" || c.SynonymsPath != "" {
		analysis.Filter = make(map[string]types.TokenFilter, 2)
	}
	if c.StopwordsPath != "" {
		analysis.Filter[filterStopwords] = types.StopTokenFilter{StopwordsPath: strPtr(c.StopwordsPath)}
	}
	if c.SynonymsPath != "" {
		analysis.Filter[filterSynonyms] = types.SynonymTokenFilter{SynonymsPath: strPtr(c.SynonymsPath)}
	}
	return analysis
}

// Mappings returns the field mapping of the job document.
func (c Config) Mappings() *types.TypeMapping {
	text := func(analyzer string) types.TextProperty {
		return types.TextProperty{Analyzer: strPtr(analyzer), SearchAnalyzer: strPtr(analyzer)}
	}

	companyName2 := AnalyzerNgram
	if c.IKPlugin {
		companyName2 = AnalyzerIKSmart
	}

	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"jobId":        types.KeywordProperty{},
			"name":         text(AnalyzerNgram),
			"companyName1": text(AnalyzerNgram),
			"companyName2": text(companyName2),
			"salaryFrom":   types.IntegerNumberProperty{},
			"salaryTo":     types.IntegerNumberProperty{},
			"districtId":   types.IntegerNumberProperty{},
			"functionIds":  types.IntegerNumberProperty{},
			"geo":          types.GeoPointProperty{},
			"startDate":    types.DateProperty{},
			"endDate":      types.DateProperty{},
			"createDate":   types.DateProperty{},
		},
	}
}

// CreateBody returns the create-index request. When alias is not empty
// the new index joins it as part of the creation.
func (c Config) CreateBody(alias string) *create.Request {
	req := &create.Request{
		Settings: &types.IndexSettings{
			NumberOfShards:   strconv.Itoa(c.Shards),
			NumberOfReplicas: strconv.Itoa(c.Replicas),
			Analysis:         c.Analysis(),
		},
		Mappings: c.Mappings(),
	}
	if alias != "" {
		req.Aliases = map[string]types.Alias{alias: {}}
	}
	return req
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
