// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/dmossmd/ed-copilot/internal/answer"
	"github.com/dmossmd/ed-copilot/internal/cache"
	"github.com/dmossmd/ed-copilot/internal/chat"
	"github.com/dmossmd/ed-copilot/internal/pubmed"
	"github.com/dmossmd/ed-copilot/pkg/types"
)

// newRetriever builds the PubMed client with its response cache. The caller
// owns closing the returned store.
func newRetriever(cfg types.PubMedConfig, cachePath string) (*pubmed.Client, *cache.Store, error) {
	store, err := cache.Open(cachePath, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	return pubmed.NewClient(cfg, store), store, nil
}

// newPipeline wires a full turn pipeline from command flags and config.
func newPipeline(cmd *cobra.Command) (*chat.Pipeline, *cache.Store, error) {
	cfg := appConfig(cmd)

	cachePath, _ := cmd.Flags().GetString("cache")
	client, store, err := newRetriever(cfg.PubMed, cachePath)
	if err != nil {
		return nil, nil, err
	}

	backend, err := answer.NewOpenAIBackend(cfg.Answer)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return &chat.Pipeline{PubMed: client, Backend: backend, Cfg: cfg}, store, nil
}
