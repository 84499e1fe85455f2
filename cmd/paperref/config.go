package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/config"
	"github.com/matsen/paperref/internal/embedding"
	"github.com/matsen/paperref/internal/s2"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration: graph settings from .paperref/config.json
(defaults outside a repository) and service settings from the global config
file. The API key itself is never printed.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// ConfigShowResponse is the output of config show.
type ConfigShowResponse struct {
	Repository       string         `json:"repository,omitempty"`
	Graph            *config.Config `json:"graph"`
	GlobalConfigPath string         `json:"global_config_path"`
	S2APIKeySet      bool           `json:"s2_api_key_set"`
	S2APIURL         string         `json:"s2_api_url"`
	OllamaURL        string         `json:"ollama_url"`
	EmbeddingModel   string         `json:"embedding_model"`
	ListenAddr       string         `json:"listen_addr"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	root := findRepository()

	resp := ConfigShowResponse{
		Repository:       root,
		Graph:            loadConfig(root),
		GlobalConfigPath: config.GlobalConfigPath(),
		S2APIKeySet:      config.GetS2APIKey() != "",
		S2APIURL:         orDefault(config.GetS2APIURL(), s2.BaseURL),
		OllamaURL:        orDefault(config.GetOllamaURL(), embedding.DefaultOllamaURL),
		EmbeddingModel:   orDefault(config.GetEmbeddingModel(), embedding.DefaultModel),
		ListenAddr:       config.GetListenAddr(),
	}

	if !humanOutput {
		outputJSON(resp)
		return nil
	}

	if root != "" {
		outputHuman("repository:             %s\n", root)
	} else {
		outputHuman("repository:             (none, using defaults)\n")
	}
	outputHuman("num_nodes:              %d\n", resp.Graph.NumNodes)
	outputHuman("hub_ceiling:            %d\n", resp.Graph.HubCeiling)
	outputHuman("batch_pause_ms:         %d\n", resp.Graph.BatchPauseMS)
	outputHuman("second_level_pause_ms:  %d\n", resp.Graph.SecondLevelPauseMS)
	outputHuman("global config:          %s\n", resp.GlobalConfigPath)
	keyStatus := "not set"
	if resp.S2APIKeySet {
		keyStatus = "set"
	}
	outputHuman("s2_api_key:             %s\n", keyStatus)
	outputHuman("s2_api_url:             %s\n", resp.S2APIURL)
	outputHuman("ollama_url:             %s\n", resp.OllamaURL)
	outputHuman("embedding_model:        %s\n", resp.EmbeddingModel)
	outputHuman("listen_addr:            %s\n", resp.ListenAddr)
	if !resp.S2APIKeySet {
		outputHuman("\n%s\n", config.HelpfulConfigMessage())
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
