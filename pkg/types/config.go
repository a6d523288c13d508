// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout applied uniformly to every
	// outbound call (default 20s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ed-copilot/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the retrieval stage.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// RetMax is the maximum number of search hits to pull (default 5).
	RetMax int `json:"retmax" yaml:"retmax"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CacheTTL is how long cached search/summary/abstract responses stay
	// fresh (default 1h). Zero disables caching.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// FetchAbstracts enables the extra efetch call that enriches evidence
	// with abstract text.
	FetchAbstracts bool `json:"fetch_abstracts" yaml:"fetch_abstracts"`

	// MaxAbstractChars bounds each abstract included in the evidence block
	// (default 1200). Longer abstracts are truncated with an ellipsis.
	MaxAbstractChars int `json:"max_abstract_chars" yaml:"max_abstract_chars"`
}

// AnswerConfig holds settings for the generation stage.
type AnswerConfig struct {
	// Model is the chat completion model identifier (default "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the completion service. Required; its
	// absence is a configuration error, not a retryable condition.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature. Kept low (default 0.2) so the
	// output sticks to the structural template.
	Temperature float32 `json:"temperature" yaml:"temperature"`

	// WorkupMaxTokens is the output budget for workup/treatment/disposition
	// answers (default 450).
	WorkupMaxTokens int `json:"workup_max_tokens" yaml:"workup_max_tokens"`

	// DischargeMaxTokens is the output budget for discharge instructions
	// (default 350).
	DischargeMaxTokens int `json:"discharge_max_tokens" yaml:"discharge_max_tokens"`

	// HistoryWindow is how many trailing transcript turns accompany each
	// generation request (default 5).
	HistoryWindow int `json:"history_window" yaml:"history_window"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	PubMed PubMedConfig `json:"pubmed" yaml:"pubmed"`
	Answer AnswerConfig `json:"answer" yaml:"answer"`

	// Passcode is the shared access secret for the chat surface. Empty
	// disables the gate.
	Passcode string `json:"passcode,omitempty" yaml:"passcode,omitempty"`
}

// Defaults applied when a field is unset.
const (
	DefaultTimeout            = 20 * time.Second
	DefaultUserAgent          = "ed-copilot/0.1"
	DefaultRetMax             = 5
	DefaultCacheTTL           = time.Hour
	DefaultMaxAbstractChars   = 1200
	DefaultModel              = "gpt-4o-mini"
	DefaultTemperature        = 0.2
	DefaultWorkupMaxTokens    = 450
	DefaultDischargeMaxTokens = 350
	DefaultHistoryWindow      = 5
)

// WithDefaults returns a copy of cfg with zero-valued fields replaced by the
// package defaults.
func (c AppConfig) WithDefaults() AppConfig {
	if c.PubMed.Timeout <= 0 {
		c.PubMed.Timeout = DefaultTimeout
	}
	if c.PubMed.UserAgent == "" {
		c.PubMed.UserAgent = DefaultUserAgent
	}
	if c.PubMed.RetMax <= 0 {
		c.PubMed.RetMax = DefaultRetMax
	}
	if c.PubMed.CacheTTL < 0 {
		c.PubMed.CacheTTL = DefaultCacheTTL
	}
	if c.PubMed.MaxAbstractChars <= 0 {
		c.PubMed.MaxAbstractChars = DefaultMaxAbstractChars
	}
	if c.Answer.Model == "" {
		c.Answer.Model = DefaultModel
	}
	if c.Answer.Temperature <= 0 {
		c.Answer.Temperature = DefaultTemperature
	}
	if c.Answer.WorkupMaxTokens <= 0 {
		c.Answer.WorkupMaxTokens = DefaultWorkupMaxTokens
	}
	if c.Answer.DischargeMaxTokens <= 0 {
		c.Answer.DischargeMaxTokens = DefaultDischargeMaxTokens
	}
	if c.Answer.HistoryWindow <= 0 {
		c.Answer.HistoryWindow = DefaultHistoryWindow
	}
	return c
}
